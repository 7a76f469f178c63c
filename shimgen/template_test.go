package shimgen_test

import (
	"reflect"
	"testing"

	"shimpack.app/shimgen"
)

// flagSet is a [shimgen.Flags] backed by a map.
type flagSet map[string]bool

func (f flagSet) Flag(name string) (present, known bool) { present, known = f[name]; return }

func TestParse(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		src  string
		want error
	}{
		{"empty", "", nil},
		{"text", "package main\n", nil},
		{"dollar", "$ $$ $", nil},
		{"nested", "$(start a)$(each l)$(x)$(end l)$(end a)", nil},
		{"spaces", "$( start   a )$(end a)", nil},

		{"unterminated eof", "a $(b", &shimgen.TemplateError{Line: 1, Col: 3, Directive: "b", Reason: "unterminated directive"}},
		{"unterminated newline", "\n\t$(a\n)", &shimgen.TemplateError{Line: 2, Col: 2, Directive: "a", Reason: "unterminated directive"}},
		{"malformed empty", "$( )", &shimgen.TemplateError{Line: 1, Col: 1, Directive: " ", Reason: "malformed directive"}},
		{"malformed fields", "$(start a b)", &shimgen.TemplateError{Line: 1, Col: 1, Directive: "start a b", Reason: "malformed directive"}},
		{"malformed keyword", "$(stop a)", &shimgen.TemplateError{Line: 1, Col: 1, Directive: "stop a", Reason: "malformed directive"}},
		{"malformed name", "$(a/b)", &shimgen.TemplateError{Line: 1, Col: 1, Directive: "a/b", Reason: "malformed directive"}},
		{"end unmatched", "x\n$(end a)", &shimgen.TemplateError{Line: 2, Col: 1, Directive: "end a", Reason: "end without matching start"}},
		{"end mismatch", "$(start a)$(end b)", &shimgen.TemplateError{Line: 1, Col: 11, Directive: "end b", Reason: "end does not match $(start a)"}},
		{"never closed", "$(start a)\n$(each l)\n$(end l)", &shimgen.TemplateError{Line: 1, Col: 1, Directive: "start a", Reason: "block is never closed"}},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := shimgen.Parse(tc.src)
			if tc.want == nil {
				if err != nil {
					t.Errorf("Parse: error = %v", err)
				}
				return
			}
			if !reflect.DeepEqual(err, tc.want) {
				t.Errorf("Parse: error = %#v, want %#v", err, tc.want)
			}
		})
	}

	t.Run("must", func(t *testing.T) {
		t.Parallel()

		defer func() {
			want := &shimgen.TemplateError{Line: 1, Col: 1, Directive: "end a", Reason: "end without matching start"}
			if r := recover(); !reflect.DeepEqual(r, want) {
				t.Errorf("MustParse: panic = %v", r)
			}
		}()
		shimgen.MustParse("$(end a)")
	})
}

func TestRender(t *testing.T) {
	t.Parallel()

	flags := flagSet{"on": true, "off": false}
	pairs := shimgen.List{
		{{"k", shimgen.Literal("a")}, {"v", shimgen.Literal("1")}},
		{{"k", shimgen.Literal("b")}},
	}

	testCases := []struct {
		name     string
		src      string
		bindings shimgen.Bindings
		want     string
		wantErr  error
	}{
		{"text", "package main\n", nil, "package main\n", nil},
		{"escape", "$$(x) $$$(x)$$", shimgen.Bindings{{"x", shimgen.Literal("y")}}, "$(x) $y$", nil},
		{"placeholder", "a $(x) b $(x)", shimgen.Bindings{{"x", shimgen.Literal("1")}}, "a 1 b 1", nil},

		{"flag present", "<$(start on)x$(end on)>", nil, "<x>", nil},
		{"flag absent", "<$(start off)x$(end off)>", nil, "<>", nil},
		{"flag before cond", "<$(start on)x$(end on)>", shimgen.Bindings{{"on", shimgen.Cond(false)}}, "<x>", nil},
		{"cond", "$(start c)x$(end c)$(start d)y$(end d)",
			shimgen.Bindings{{"c", shimgen.Cond(true)}, {"d", shimgen.Cond(false)}}, "x", nil},

		{"each", "$(each l)[$(k)=$(v)]$(end l)", shimgen.Bindings{
			{"l", pairs}, {"v", shimgen.Literal("outer")},
		}, "[a=1][b=outer]", nil},
		{"each empty", "<$(each l)$(absent)$(end l)>", shimgen.Bindings{{"l", shimgen.List{}}}, "<>", nil},
		{"each nested flag", "$(each l)$(start on)$(k)$(end on)$(start off)$(v)$(end off)$(end l)",
			shimgen.Bindings{{"l", pairs}, {"v", shimgen.Literal("")}}, "ab", nil},

		{"unknown placeholder", "ab\n  $(x)", nil, "",
			&shimgen.TemplateError{Line: 2, Col: 3, Directive: "x", Reason: "unknown placeholder"}},
		{"placeholder cond", "$(x)", shimgen.Bindings{{"x", shimgen.Cond(true)}}, "",
			&shimgen.TemplateError{Line: 1, Col: 1, Directive: "x", Reason: "placeholder is not bound to a literal"}},
		{"unknown flag", "$(start x)$(end x)", nil, "",
			&shimgen.TemplateError{Line: 1, Col: 1, Directive: "start x", Reason: "unknown flag"}},
		{"flag literal", "$(start x)$(end x)", shimgen.Bindings{{"x", shimgen.Literal("")}}, "",
			&shimgen.TemplateError{Line: 1, Col: 1, Directive: "start x", Reason: "conditional block is not bound to a flag"}},
		{"unknown list", "$(each x)$(end x)", nil, "",
			&shimgen.TemplateError{Line: 1, Col: 1, Directive: "each x", Reason: "unknown list"}},
		{"list literal", "$(each x)$(end x)", shimgen.Bindings{{"x", shimgen.Literal("")}}, "",
			&shimgen.TemplateError{Line: 1, Col: 1, Directive: "each x", Reason: "repeated block is not bound to a list"}},
		{"omitted unknown placeholder", "$(start off)\n$(x)$(end off)", nil, "",
			&shimgen.TemplateError{Line: 2, Col: 1, Directive: "x", Reason: "unknown placeholder"}},
		{"omitted unknown flag", "$(start off)$(start x)$(end x)$(end off)", nil, "",
			&shimgen.TemplateError{Line: 1, Col: 13, Directive: "start x", Reason: "unknown flag"}},
		{"omitted each element", "$(start off)$(each l)$(x)$(end l)$(end off)", shimgen.Bindings{{"l", pairs}}, "",
			&shimgen.TemplateError{Line: 1, Col: 22, Directive: "x", Reason: "unknown placeholder"}},

		{"duplicate", "", shimgen.Bindings{{"x", shimgen.Cond(true)}, {"x", shimgen.Cond(false)}}, "",
			&shimgen.TemplateError{Directive: "x", Reason: "duplicate binding"}},
		{"invalid name", "", shimgen.Bindings{{"a b", shimgen.Cond(true)}}, "",
			&shimgen.TemplateError{Directive: "a b", Reason: "invalid binding name"}},
		{"nil value", "", shimgen.Bindings{{"l", shimgen.List{{{"x", nil}}}}}, "",
			&shimgen.TemplateError{Directive: "x", Reason: "binding holds no value"}},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			tmpl, err := shimgen.Parse(tc.src)
			if err != nil {
				t.Fatalf("Parse: error = %v", err)
			}
			got, err := tmpl.Render(flags, tc.bindings)
			if !reflect.DeepEqual(err, tc.wantErr) {
				t.Errorf("Render: error = %#v, want %#v", err, tc.wantErr)
			}
			if err == nil && string(got) != tc.want {
				t.Errorf("Render: %q, want %q", got, tc.want)
			}
		})
	}
}

func TestTemplateError(t *testing.T) {
	t.Parallel()

	err := &shimgen.TemplateError{Line: 3, Col: 7, Directive: "end x", Reason: "end without matching start"}
	if got, want := err.Error(), "template:3:7: end without matching start in $(end x)"; got != want {
		t.Errorf("Error: %q, want %q", got, want)
	}
	if got, want := err.Message(), "invalid template at line 3: end without matching start in $(end x)"; got != want {
		t.Errorf("Message: %q, want %q", got, want)
	}
}
