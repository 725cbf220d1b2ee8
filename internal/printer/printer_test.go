package printer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cssc-lang/cssc/internal/arena"
	"github.com/cssc-lang/cssc/internal/ast"
	"github.com/cssc-lang/cssc/internal/selector"
	"github.com/cssc-lang/cssc/internal/value"
)

func boxRuleset(a *ast.Arena) ast.Statement {
	width := a.Alloc(ast.Declaration{
		Property: ast.PlainInterpolated("width"),
		Value:    ast.Literal{Value: value.Number{Val: 10, Unit: "px"}},
	})
	color := a.Alloc(ast.Declaration{
		Property: ast.PlainInterpolated("color"),
		Value:    ast.Literal{Value: value.Color{R: 255, G: 0, B: 0, A: 1, Original: "red", HasOriginal: true}},
	})
	return ast.Ruleset{
		Selector: selector.NewList(selector.NewComplex(selector.NewCompound(selector.Class("box")))),
		Body:     ast.Block{width, color},
	}
}

func TestPrintExpandedStyle(t *testing.T) {
	a := arena.New[ast.Statement]()
	r := boxRuleset(a)
	out := Print([]ast.Statement{r}, a, Options{Style: Expanded})
	css := string(out.CSS)
	assert.Contains(t, css, ".box {\n")
	assert.Contains(t, css, "  width: 10px;\n")
	assert.Contains(t, css, "  color: red;\n")
	assert.Contains(t, css, "}\n")
}

func TestPrintCompressedStyleOmitsWhitespaceAndTrailingSemicolon(t *testing.T) {
	a := arena.New[ast.Statement]()
	r := boxRuleset(a)
	out := Print([]ast.Statement{r}, a, Options{Style: Compressed})
	css := string(out.CSS)
	assert.NotContains(t, css, "\n")
	assert.NotContains(t, css, "; }")
	assert.Contains(t, css, ".box{width:10px;color:#f00}")
}

func TestPrintCompactStylePutsRuleOnOneLine(t *testing.T) {
	a := arena.New[ast.Statement]()
	r := boxRuleset(a)
	out := Print([]ast.Statement{r}, a, Options{Style: Compact})
	css := string(out.CSS)
	assert.Contains(t, css, ".box { width: 10px; color: red; }")
}

func TestPrintNestedStyleUsesSelectorDepthForIndent(t *testing.T) {
	a := arena.New[ast.Statement]()
	decl := a.Alloc(ast.Declaration{Property: ast.PlainInterpolated("color"), Value: ast.Literal{Value: value.String{Text: "red"}}})
	r := ast.Ruleset{
		Selector: selector.NewList(selector.NewComplex(selector.NewCompound(selector.Class("child")))),
		Body:     ast.Block{decl},
		Depth:    2,
	}
	out := Print([]ast.Statement{r}, a, Options{Style: Nested})
	css := string(out.CSS)
	assert.Contains(t, css, "    .child {\n")
}

func TestFormatNumberRoundsToZeroStillPrintsDecimal(t *testing.T) {
	p := &printer{opts: Options{Precision: 2}}
	assert.Equal(t, "0.0", p.formatNumber(0.001))
	assert.Equal(t, "-0.0", p.formatNumber(-0.001))
	assert.Equal(t, "0", p.formatNumber(0))
	assert.Equal(t, "1.5", p.formatNumber(1.5))
}

func TestFormatNumberCompressedStripsLeadingZero(t *testing.T) {
	p := &printer{opts: Options{Precision: 5, Style: Compressed}}
	assert.Equal(t, ".5", p.formatNumber(0.5))
	assert.Equal(t, "-.5", p.formatNumber(-0.5))
}

func TestFormatColorPrefersOriginalSpellingExceptWhenCompressed(t *testing.T) {
	c := value.Color{R: 255, G: 0, B: 0, A: 1, Original: "tomato", HasOriginal: true}
	nested := &printer{opts: Options{Style: Nested}}
	assert.Equal(t, "tomato", nested.formatColor(c))

	compressed := &printer{opts: Options{Style: Compressed}}
	assert.Equal(t, "#f00", compressed.formatColor(c))
}

func TestFormatColorTransparentBlack(t *testing.T) {
	p := &printer{opts: Options{Style: Nested}}
	assert.Equal(t, "transparent", p.formatColor(value.Color{A: 0}))
}

func TestFormatColorRGBAWhenAlphaPartial(t *testing.T) {
	p := &printer{opts: Options{Style: Nested, Precision: 2}}
	got := p.formatColor(value.Color{R: 10, G: 20, B: 30, A: 0.5})
	assert.Equal(t, "rgba(10, 20, 30, 0.5)", got)
}

func TestFormatStringPrefersDoubleQuoteUnlessContentForcesSingle(t *testing.T) {
	p := &printer{}
	assert.Equal(t, `"abc"`, p.formatString(value.String{Text: "abc", Quoted: true}))
	assert.Equal(t, `'has "quotes"'`, p.formatString(value.String{Text: `has "quotes"`, Quoted: true}))
}

func TestPrintMediaRuleBubblesNestedRuleset(t *testing.T) {
	a := arena.New[ast.Statement]()
	decl := a.Alloc(ast.Declaration{Property: ast.PlainInterpolated("display"), Value: ast.Literal{Value: value.String{Text: "none"}}})
	inner := a.Alloc(ast.Ruleset{
		Selector: selector.NewList(selector.NewComplex(selector.NewCompound(selector.Class("hide")))),
		Body:     ast.Block{decl},
	})
	media := ast.MediaRule{
		Query: ast.PlainInterpolated("(max-width: 600px)"),
		Body:  ast.Block{inner},
	}
	out := Print([]ast.Statement{media}, a, Options{Style: Expanded})
	css := string(out.CSS)
	assert.Contains(t, css, "@media (max-width: 600px) {\n")
	assert.Contains(t, css, ".hide {\n")
	require.Contains(t, css, "display: none;")
}

func TestPrintSkipsRulesetWithEmptySelectorAfterPlaceholderFiltering(t *testing.T) {
	a := arena.New[ast.Statement]()
	decl := a.Alloc(ast.Declaration{Property: ast.PlainInterpolated("color"), Value: ast.Literal{Value: value.String{Text: "red"}}})
	r := ast.Ruleset{
		Selector: selector.NewList(selector.NewComplex(selector.NewCompound(selector.Placeholder("base")))),
		Body:     ast.Block{decl},
	}
	out := Print([]ast.Statement{r}, a, Options{Style: Expanded})
	assert.Empty(t, string(out.CSS))
}
