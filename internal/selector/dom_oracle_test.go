package selector

// This file cross-checks IsSuperselectorOf against a real DOM: rather than
// trust only the hand-derived algebra, render a small HTML fixture and ask
// an independent CSS selector engine (cascadia, over golang.org/x/net/html)
// which elements two selector strings actually match. If our algebra says a
// is a superselector of b, then on every real DOM, matches(a) must be a
// superset of matches(b).

import (
	"strings"
	"testing"

	"github.com/andybalholm/cascadia"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

const oracleFixture = `
<html><body>
  <div id="main" class="panel active">
    <section class="panel">
      <p class="active">one</p>
      <p>two</p>
    </section>
  </div>
  <div class="panel">
    <span class="active">three</span>
  </div>
</body></html>
`

func matchedElements(t *testing.T, doc *html.Node, cssSelector string) map[*html.Node]bool {
	t.Helper()
	sel, err := cascadia.Parse(cssSelector)
	require.NoError(t, err)
	out := map[*html.Node]bool{}
	for _, n := range cascadia.QueryAll(doc, sel) {
		out[n] = true
	}
	return out
}

func isSubsetOf(a, b map[*html.Node]bool) bool {
	for n := range a {
		if !b[n] {
			return false
		}
	}
	return true
}

func TestIsSuperselectorOfAgreesWithRealDOM(t *testing.T) {
	doc, err := html.Parse(strings.NewReader(oracleFixture))
	require.NoError(t, err)

	cases := []struct {
		name         string
		broad, narrow Complex
	}{
		{
			name:  "class selector broader than compound with extra class",
			broad: NewComplex(NewCompound(Class("panel"))),
			narrow: NewComplex(NewCompound(Class("panel"), Class("active"))),
		},
		{
			name:  "type selector broader than type+class",
			broad: NewComplex(NewCompound(Type(nil, "div"))),
			narrow: NewComplex(NewCompound(Type(nil, "div"), Class("active"))),
		},
		{
			name: "descendant combinator broader than child combinator of the same chain",
			broad: NewComplex(NewCompound(Class("panel")),
				Step{Combinator: Descendant, Compound: NewCompound(Class("active"))}),
			narrow: NewComplex(NewCompound(Class("panel")),
				Step{Combinator: Child, Compound: NewCompound(Class("active"))}),
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			require.True(t, IsSuperselectorOf(c.broad, c.narrow),
				"selector algebra must agree broad is a superselector before consulting the DOM")

			broadMatches := matchedElements(t, doc, c.broad.String())
			narrowMatches := matchedElements(t, doc, c.narrow.String())
			require.True(t, isSubsetOf(narrowMatches, broadMatches),
				"real DOM: every element matched by %q must also be matched by %q", c.narrow, c.broad)
		})
	}
}
