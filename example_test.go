package intakeflow_test

import (
	"context"
	"fmt"
	"log"
	"net/url"

	"github.com/petrijr/intakeflow"
)

// Example_surveyBuilder walks a small survey through the BMI interstitial
// to the product summary handoff using in-process services.
func Example_surveyBuilder() {
	ctx := context.Background()

	survey := intakeflow.NewSurvey("intake").
		TextInput("name", "What is your name?").
		BodyMetrics("hw", "Height and weight").
		FreeText("history", "Anything else we should know?")

	services := intakeflow.NewLocalServices()
	c, err := intakeflow.NewController(intakeflow.Config{
		SurveyID:    survey.ID(),
		PatientID:   "patient-1",
		Category:    "weight-loss",
		Catalog:     survey.Catalog(),
		Submissions: services,
		Storage:     intakeflow.NewInMemoryStorage(),
		Redirect: intakeflow.RedirectConfig{
			ProductSummaryURL: "https://shop.example.com/products",
			Params:            url.Values{"source": {"newsletter"}, "gclid": {"abc"}},
		},
	})
	if err != nil {
		log.Fatal(err)
	}
	if err := c.Mount(ctx); err != nil {
		log.Fatal(err)
	}

	if _, err := c.Start(ctx); err != nil {
		log.Fatal(err)
	}
	if _, err := c.Submit(ctx, intakeflow.AnswerInput{Value: intakeflow.TextValue("Pat")}); err != nil {
		log.Fatal(err)
	}

	tr, err := c.Submit(ctx, intakeflow.AnswerInput{
		Value: intakeflow.BodyValue(intakeflow.BodyMetrics{HeightFeet: 5, HeightInches: 10, WeightPounds: 180}),
	})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(tr.Kind, tr.BMI)

	if _, err := c.Proceed(ctx); err != nil {
		log.Fatal(err)
	}
	tr, err = c.Submit(ctx, intakeflow.AnswerInput{Value: intakeflow.TextValue("nothing")})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(tr.Kind)

	r, err := c.Redirect(ctx)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(r.URL)

	// Output:
	// interstitial 25.8
	// completed
	// https://shop.example.com/products?source=newsletter
}
