package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/petrijr/intakeflow/pkg/api"
)

// Adapter persists one survey instance's answers and flow state in a
// Storage, scoped by survey category:
//
//	<prefix>active_category            => category whose state is on disk
//	<prefix><category>:answers         => gob map[string]api.Answer
//	<prefix><category>:cursor          => gob int
//	<prefix><category>:completed       => gob bool
//	<prefix><category>:submission_id   => gob string
//
// Only one category is kept at a time. Loading a different category
// clears the previous one.
type Adapter struct {
	store  Storage
	prefix string
}

// Loaded is the state restored by Adapter.Load.
type Loaded struct {
	Answers map[string]api.Answer
	State   api.FlowState
	// Discarded is the category whose state was dropped because it did
	// not match the requested one.
	Discarded api.Category
}

// NewAdapter wraps store. prefix namespaces all keys (e.g. "intake:").
func NewAdapter(store Storage, prefix string) *Adapter {
	return &Adapter{store: store, prefix: prefix}
}

const (
	keyAnswers      = "answers"
	keyCursor       = "cursor"
	keyCompleted    = "completed"
	keySubmissionID = "submission_id"
)

var categoryKeys = []string{keyAnswers, keyCursor, keyCompleted, keySubmissionID}

func (a *Adapter) keyActive() string {
	return a.prefix + "active_category"
}

func (a *Adapter) key(c api.Category, name string) string {
	return a.prefix + string(c) + ":" + name
}

// Load restores the state stored for category. If the stored state
// belongs to another category it is cleared and an empty state returned.
func (a *Adapter) Load(ctx context.Context, category api.Category) (Loaded, error) {
	out := Loaded{Answers: map[string]api.Answer{}}

	active, found, err := get[string](ctx, a.store, a.keyActive())
	if err != nil {
		return out, err
	}
	if found && api.Category(active) != category {
		if err := a.Clear(ctx, api.Category(active)); err != nil {
			return out, err
		}
		out.Discarded = api.Category(active)
	}
	if !found || out.Discarded != "" {
		if err := set(ctx, a.store, a.keyActive(), string(category)); err != nil {
			return out, err
		}
		return out, nil
	}

	if ans, ok, err := get[map[string]api.Answer](ctx, a.store, a.key(category, keyAnswers)); err != nil {
		return out, err
	} else if ok && ans != nil {
		out.Answers = ans
	}
	if out.State.CursorPosition, _, err = get[int](ctx, a.store, a.key(category, keyCursor)); err != nil {
		return out, err
	}
	if out.State.IsSurveyCompleted, _, err = get[bool](ctx, a.store, a.key(category, keyCompleted)); err != nil {
		return out, err
	}
	if out.State.SubmissionID, _, err = get[string](ctx, a.store, a.key(category, keySubmissionID)); err != nil {
		return out, err
	}
	return out, nil
}

// SaveAnswers replaces the answer snapshot of category.
func (a *Adapter) SaveAnswers(ctx context.Context, category api.Category, answers map[string]api.Answer) error {
	if answers == nil {
		answers = map[string]api.Answer{}
	}
	return set(ctx, a.store, a.key(category, keyAnswers), answers)
}

// SaveCursor stores the cursor position of category.
func (a *Adapter) SaveCursor(ctx context.Context, category api.Category, cursor int) error {
	return set(ctx, a.store, a.key(category, keyCursor), cursor)
}

// SaveCompletion stores the completion flag and submission id of category.
func (a *Adapter) SaveCompletion(ctx context.Context, category api.Category, completed bool, submissionID string) error {
	if err := set(ctx, a.store, a.key(category, keySubmissionID), submissionID); err != nil {
		return err
	}
	return set(ctx, a.store, a.key(category, keyCompleted), completed)
}

// Clear removes every key of category and the active-category marker if it
// points at category.
func (a *Adapter) Clear(ctx context.Context, category api.Category) error {
	var errs []error
	for _, name := range categoryKeys {
		if err := a.store.Clear(ctx, a.key(category, name)); err != nil {
			errs = append(errs, err)
		}
	}
	active, found, err := get[string](ctx, a.store, a.keyActive())
	if err != nil {
		errs = append(errs, err)
	} else if found && api.Category(active) == category {
		if err := a.store.Clear(ctx, a.keyActive()); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("clear category %q: %w", category, errors.Join(errs...))
	}
	return nil
}

func get[T any](ctx context.Context, s Storage, key string) (T, bool, error) {
	var zero T
	data, err := s.Get(ctx, key)
	if errors.Is(err, ErrKeyNotFound) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, fmt.Errorf("load %s: %w", key, err)
	}
	v, err := DecodeValue[T](data)
	if err != nil {
		return zero, false, fmt.Errorf("load %s: %w", key, err)
	}
	return v, true, nil
}

func set(ctx context.Context, s Storage, key string, v any) error {
	data, err := EncodeValue(v)
	if err != nil {
		return err
	}
	if err := s.Set(ctx, key, data); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
