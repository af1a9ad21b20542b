package tui

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-mdaform/pkg/model"
	"github.com/goliatone/go-mdaform/pkg/render"
	"github.com/goliatone/go-mdaform/pkg/testsupport"
	"github.com/goliatone/go-mdaform/pkg/visibility"
)

// scriptedDriver replays canned answers. An input rejected by the prompt's
// validator is recorded and the next answer is tried, as a user would retry.
type scriptedDriver struct {
	inputs   []string
	confirms []bool
	selects  []int

	prompts  []InputConfig
	options  [][]string
	rejected []string
	infos    []string
}

func (d *scriptedDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	d.prompts = append(d.prompts, cfg)
	for len(d.inputs) > 0 {
		answer := d.inputs[0]
		d.inputs = d.inputs[1:]
		if cfg.Validator != nil {
			if err := cfg.Validator(answer); err != nil {
				d.rejected = append(d.rejected, err.Error())
				continue
			}
		}
		return answer, nil
	}
	return "", ErrAborted
}

func (d *scriptedDriver) Confirm(context.Context, ConfirmConfig) (bool, error) {
	if len(d.confirms) == 0 {
		return false, ErrAborted
	}
	answer := d.confirms[0]
	d.confirms = d.confirms[1:]
	return answer, nil
}

func (d *scriptedDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	d.options = append(d.options, cfg.Options)
	if len(d.selects) == 0 {
		return 0, ErrAborted
	}
	answer := d.selects[0]
	d.selects = d.selects[1:]
	return answer, nil
}

func (d *scriptedDriver) Info(_ context.Context, msg string) error {
	d.infos = append(d.infos, msg)
	return nil
}

func TestRenderCollectsMasterAndDetail(t *testing.T) {
	t.Parallel()

	driver := &scriptedDriver{
		inputs: []string{
			"Bolts",
			"abc", "12.5",
			"a@b.c",
			"13800138000",
			"B1", "Bolt", "x", "2", "1.25",
		},
		confirms: []bool{true, false},
		selects:  []int{2},
	}
	renderer := New(WithPromptDriver(driver), WithTheme(Theme{InfoPrefix: "> ", ErrorPrefix: "! "}))
	form := testsupport.MustForm(t, testsupport.ERPMetadata, "purchasing", "order")

	out, err := renderer.Render(testsupport.Context(), form, render.RenderOptions{
		Errors: map[string][]string{"Name": {"Name must not be empty"}},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	var got Submission
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	total := 2.5
	want := Submission{
		Values: map[string]string{
			"Name":         "Bolts",
			"Price":        "12.5",
			"Status":       "approved",
			"Email":        "a@b.c",
			"ContactPhone": "13800138000",
		},
		Details: []model.DetailRow{{"B1", "Bolt", "2", "1.25", "2.5"}},
		Total:   &total,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("submission mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]string{"Price must be numeric", "row 1: Quantity must be numeric"}, driver.rejected); diff != "" {
		t.Fatalf("rejections mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([][]string{{noneOption, "draft", "approved"}}, driver.options); diff != "" {
		t.Fatalf("select options mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"! Name must not be empty", "> Total: 2.5"}, driver.infos); diff != "" {
		t.Fatalf("info lines mismatch (-want +got):\n%s", diff)
	}
	for _, prompt := range driver.prompts {
		if prompt.Message == "Amount" {
			t.Fatalf("computed amount column should not be prompted")
		}
		if prompt.Message == "Internal *" {
			t.Fatalf("desktop-hidden field should not be prompted")
		}
	}
	if driver.prompts[0].Message != "Name *" || driver.prompts[0].Help != "up to 20 characters" {
		t.Fatalf("unexpected first prompt %+v", driver.prompts[0])
	}
}

func TestRenderFormEncoded(t *testing.T) {
	t.Parallel()

	driver := &scriptedDriver{
		inputs:   []string{"ACME & Co", "5", "A1", "Nut", "3", "2"},
		confirms: []bool{true, false},
	}
	renderer := New(WithPromptDriver(driver), WithOutputFormat(OutputFormatFormURLEncoded))
	if got := renderer.ContentType(); got != "application/x-www-form-urlencoded" {
		t.Fatalf("content type = %q", got)
	}
	form := testsupport.MustForm(t, testsupport.ERPMetadata, "sales", "quote")

	out, err := renderer.Render(testsupport.Context(), form, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := "Customer=ACME+%26+Co&Discount=5" +
		"&details%5B0%5D%5B0%5D=A1&details%5B0%5D%5B1%5D=Nut" +
		"&details%5B0%5D%5B2%5D=3&details%5B0%5D%5B3%5D=2&details%5B0%5D%5B4%5D=6.0"
	if string(out) != want {
		t.Fatalf("output mismatch:\nwant %s\ngot  %s", want, out)
	}
}

func TestRenderPrettySeedsDefaults(t *testing.T) {
	t.Parallel()

	driver := &scriptedDriver{inputs: []string{"Acme", "13800138000"}}
	renderer := New(WithPromptDriver(driver), WithOutputFormat(OutputFormatPrettyText))
	form := testsupport.MustForm(t, testsupport.ERPMetadata, "purchasing", "supplier")

	out, err := renderer.Render(testsupport.Context(), form, render.RenderOptions{
		Values: map[string]string{"id": "7", "供应商名称": "Old name"},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := "id: 7\n供应商名称: Acme\n联系方式: 13800138000\n"
	if string(out) != want {
		t.Fatalf("output mismatch:\nwant %q\ngot  %q", want, out)
	}
	if driver.prompts[0].Default != "Old name" {
		t.Fatalf("expected seeded default, got %q", driver.prompts[0].Default)
	}
}

func TestRenderTargetFiltersFields(t *testing.T) {
	t.Parallel()

	driver := &scriptedDriver{inputs: []string{"Acme"}}
	renderer := New(WithPromptDriver(driver))
	form := testsupport.MustForm(t, testsupport.ERPMetadata, "purchasing", "supplier")

	if _, err := renderer.Render(testsupport.Context(), form, render.RenderOptions{Target: visibility.Mobile}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(driver.prompts) != 1 {
		t.Fatalf("expected one prompt on mobile, got %d", len(driver.prompts))
	}
}

func TestRenderErrors(t *testing.T) {
	t.Parallel()

	aborting := New(WithPromptDriver(&scriptedDriver{}))
	form := testsupport.MustForm(t, testsupport.ERPMetadata, "purchasing", "supplier")
	if _, err := aborting.Render(testsupport.Context(), form, render.RenderOptions{}); !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}

	bad := model.NewForm("f", []model.Field{{
		Name:       "Status",
		Kind:       model.KindComboBox,
		Visibility: visibility.Default,
	}}, nil)
	if _, err := aborting.Render(testsupport.Context(), bad, render.RenderOptions{}); !errors.Is(err, model.ErrSchemaFormat) {
		t.Fatalf("expected ErrSchemaFormat, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := aborting.Render(ctx, form, render.RenderOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
