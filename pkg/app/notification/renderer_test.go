package notification

import (
	"html"
	"testing"

	domain "github.com/bazaarly/backbone/pkg/domain/notification"
	"github.com/stretchr/testify/assert"
)

type htmlEncoder struct{}

func (htmlEncoder) EncodeValue(raw string) string {
	return html.EscapeString(raw)
}

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		template string
		data     domain.Data
		want     string
	}{
		{"simple", "Hi {{name}}", domain.Data{"name": domain.String("Ana")}, "Hi Ana"},
		{"missing variable", "Hi {{name}}", domain.Data{}, "Hi "},
		{"nil data", "Hi {{name}}", nil, "Hi "},
		{"null value", "Hi {{name}}", domain.Data{"name": {}}, "Hi "},
		{"whitespace in marker", "Hi {{ name }}!", domain.Data{"name": domain.String("Ana")}, "Hi Ana!"},
		{"repeated", "{{a}}-{{a}}", domain.Data{"a": domain.String("x")}, "x-x"},
		{"integral number", "Total {{n}}", domain.Data{"n": domain.Int(3)}, "Total 3"},
		{"fractional number", "Total {{n}}", domain.Data{"n": domain.Number(12.5)}, "Total 12.5"},
		{"bool", "Paid: {{paid}}", domain.Data{"paid": domain.Bool(true)}, "Paid: true"},
		{"dotted name", "{{order.id}}", domain.Data{"order.id": domain.String("42")}, "42"},
		{"no markers", "plain text", domain.Data{"a": domain.String("x")}, "plain text"},
		{"unbalanced braces untouched", "{{name", domain.Data{"name": domain.String("x")}, "{{name"},
		{"empty template", "", domain.Data{"a": domain.String("x")}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Render(tt.template, tt.data))
		})
	}
}

func TestRender_IsIdempotentForResolvedValues(t *testing.T) {
	data := domain.Data{"name": domain.String("Ana")}
	once := Render("Hi {{name}}", data)
	assert.Equal(t, once, Render(once, data))
}

func TestRender_DoesNotRecurseIntoValues(t *testing.T) {
	data := domain.Data{"a": domain.String("{{b}}"), "b": domain.String("x")}
	assert.Equal(t, "{{b}}", Render("{{a}}", data))
}

func TestRenderEncoded_EncodesValuesOnly(t *testing.T) {
	data := domain.Data{"name": domain.String("<script>alert(1)</script>")}
	got := RenderEncoded("<p>Hello {{name}}</p>", data, htmlEncoder{})
	assert.Equal(t, "<p>Hello &lt;script&gt;alert(1)&lt;/script&gt;</p>", got)
}
