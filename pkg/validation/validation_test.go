package validation_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-mdaform/pkg/model"
	"github.com/goliatone/go-mdaform/pkg/testsupport"
	"github.com/goliatone/go-mdaform/pkg/validation"
	"github.com/goliatone/go-mdaform/pkg/visibility"
)

func widgetForm() *model.Form {
	return model.NewForm("widget", []model.Field{
		{
			Name:       "Name",
			Kind:       model.KindTextField,
			MaxLength:  200,
			Visibility: visibility.Default,
			Validation: &model.ValidationSpec{Required: true},
		},
		{
			Name:       "Price",
			Kind:       model.KindMoneyField,
			MaxLength:  10,
			Visibility: visibility.Default,
			Validation: &model.ValidationSpec{Required: true, Numeric: true},
		},
	}, nil)
}

func TestValidateWidgetScenario(t *testing.T) {
	t.Parallel()

	errs := validation.Validate(widgetForm(), map[string]string{"Name": "", "Price": "abc"}, nil)
	want := validation.Errors{
		{Field: "Name", Rule: validation.RuleRequired, Message: "Name must not be empty"},
		{Field: "Price", Rule: validation.RuleNumeric, Message: "Price must be numeric"},
	}
	if diff := cmp.Diff(want, errs); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}

	if errs := validation.Validate(widgetForm(), map[string]string{"Name": "Widget", "Price": "19.99"}, nil); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestValidateCollectsEveryViolation(t *testing.T) {
	t.Parallel()

	form := testsupport.MustForm(t, testsupport.ERPMetadata, "purchasing", "order")
	values := map[string]string{
		"Name":         "   ",
		"Price":        "ten",
		"Email":        "nobody.example.com",
		"ContactPhone": "12345",
		"Internal":     "",
	}
	rows := []model.DetailRow{
		{"", "Bolt", "x", "2", ""},
		{"B2", "", "3", "1.5", ""},
	}
	errs := validation.Validate(form, values, rows)

	got := make([]string, len(errs))
	for i, err := range errs {
		got[i] = err.Key() + ":" + string(err.Rule)
	}
	want := []string{
		"Name:required",
		"Price:numeric",
		"Email:email",
		"ContactPhone:phone",
		"details[1].ItemCode:required",
		"details[1].Quantity:numeric",
		"details[2].ItemName:required",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("violations mismatch (-want +got):\n%s", diff)
	}
	if errs[4].Message != "row 1: ItemCode must not be empty" {
		t.Fatalf("unexpected row message %q", errs[4].Message)
	}
}

func TestValidateAppliesEveryInferredRole(t *testing.T) {
	t.Parallel()

	form := model.NewForm("f", []model.Field{{
		Name:       "contact_email_or_phone",
		Kind:       model.KindTextField,
		Visibility: visibility.Default,
	}}, nil)

	errs := validation.Validate(form, map[string]string{"contact_email_or_phone": "abc"}, nil)
	got := make([]validation.Rule, len(errs))
	for i, err := range errs {
		got[i] = err.Rule
	}
	if diff := cmp.Diff([]validation.Rule{validation.RuleEmail, validation.RulePhone}, got); diff != "" {
		t.Fatalf("rules mismatch (-want +got):\n%s", diff)
	}

	declared := model.NewForm("f", []model.Field{{
		Name:       "contact_email_or_phone",
		Kind:       model.KindTextField,
		Visibility: visibility.Default,
		Role:       model.RolePhone,
	}}, nil)
	if errs := validation.Validate(declared, map[string]string{"contact_email_or_phone": "13800138000"}, nil); len(errs) != 0 {
		t.Fatalf("a declared role replaces inference, got %v", errs)
	}
}

func TestValidateHiddenFieldsAreSkipped(t *testing.T) {
	t.Parallel()

	form := model.NewForm("f", []model.Field{{
		Name:       "Secret",
		Kind:       model.KindTextField,
		Visibility: visibility.Mask("011"),
		Validation: &model.ValidationSpec{Required: true},
	}}, nil)
	if errs := validation.Validate(form, nil, nil); len(errs) != 0 {
		t.Fatalf("hidden field should not be validated, got %v", errs)
	}
}

func TestValidateMaxLengthCountsCharacters(t *testing.T) {
	t.Parallel()

	form := model.NewForm("f", []model.Field{{
		Name:       "Title",
		Kind:       model.KindTextField,
		MaxLength:  3,
		Visibility: visibility.Default,
	}}, nil)

	if errs := validation.Validate(form, map[string]string{"Title": "  中文字  "}, nil); len(errs) != 0 {
		t.Fatalf("three characters after trimming should pass, got %v", errs)
	}
	errs := validation.Validate(form, map[string]string{"Title": "abcd"}, nil)
	if len(errs) != 1 || errs[0].Message != "Title must not exceed 3 characters" {
		t.Fatalf("unexpected errors %v", errs)
	}
}

func TestValidateNumericExemptsEmpty(t *testing.T) {
	t.Parallel()

	form := testsupport.MustForm(t, testsupport.ERPMetadata, "sales", "quote")
	rows := []model.DetailRow{{"A", "Nut", "1", "2", ""}}
	if errs := validation.Validate(form, map[string]string{}, rows); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
	errs := validation.Validate(form, map[string]string{"Discount": "1e3"}, rows)
	if len(errs) != 0 {
		t.Fatalf("scientific notation is numeric, got %v", errs)
	}
	errs = validation.Validate(form, map[string]string{"Discount": "0x10"}, rows)
	if len(errs) != 1 || errs[0].Rule != validation.RuleNumeric {
		t.Fatalf("hex must be rejected, got %v", errs)
	}
}

func TestValidateRequiresDetailRows(t *testing.T) {
	t.Parallel()

	form := testsupport.MustForm(t, testsupport.ERPMetadata, "sales", "quote")
	errs := validation.Validate(form, nil, nil)
	if len(errs) != 1 || errs[0].Rule != validation.RuleMinRows {
		t.Fatalf("expected a single minRows error, got %v", errs)
	}
	if diff := cmp.Diff(map[string][]string{"details": {"details must contain at least one row"}}, errs.ByField()); diff != "" {
		t.Fatalf("ByField mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateLocalisedMessages(t *testing.T) {
	t.Parallel()

	v := validation.New(validation.WithLocale("zh-Hans"))
	errs := v.Validate(widgetForm(), map[string]string{"Price": "abc"}, nil)
	want := []string{"Name 不能为空", "Price 必须是数字"}
	if diff := cmp.Diff(want, errs.Messages()); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}

	fallback := validation.New(validation.WithLocale("not a tag"))
	if got := fallback.Validate(widgetForm(), nil, nil)[0].Message; got != "Name must not be empty" {
		t.Fatalf("expected English fallback, got %q", got)
	}
}

func TestValidateStrictOptions(t *testing.T) {
	t.Parallel()

	form := testsupport.MustForm(t, testsupport.ERPMetadata, "purchasing", "order")
	values := map[string]string{"Name": "n", "Price": "1", "Status": "archived"}
	rows := []model.DetailRow{{"A", "B", "1", "1", ""}}

	if errs := validation.Validate(form, values, rows); len(errs) != 0 {
		t.Fatalf("options are not enforced by default, got %v", errs)
	}
	errs := validation.New(validation.WithStrictOptions()).Validate(form, values, rows)
	if len(errs) != 1 || errs[0].Rule != validation.RuleOption {
		t.Fatalf("expected option violation, got %v", errs)
	}
}

func TestValidateNilFormIsSafe(t *testing.T) {
	t.Parallel()

	if errs := validation.Validate(nil, map[string]string{"a": "b"}, nil); errs != nil {
		t.Fatalf("expected nil, got %v", errs)
	}
}

func TestIsPhone(t *testing.T) {
	t.Parallel()

	cases := map[string]bool{
		"13800138000":  true,
		"1380013800":   false,
		"138001380000": false,
		"1380013800a":  false,
		"１3800138000":  false,
	}
	for in, want := range cases {
		if got := validation.IsPhone(in); got != want {
			t.Fatalf("IsPhone(%q) = %v, want %v", in, got, want)
		}
	}
}
