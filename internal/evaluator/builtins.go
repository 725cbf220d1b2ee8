package evaluator

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/cssc-lang/cssc/internal/value"
)

// builtins is the small built-in function table: only the functions
// needed to exercise the color/value stack (internal/value.Color, go-colorful) from stylesheet
// code, not a full reimplementation of Sass's built-in function library
// (spec §1 scopes that out).
var builtins = map[string]func(args []value.Value) value.Value{
	"percentage": biPercentage,
	"quote":      biQuote,
	"unquote":    biUnquote,
	"rgba":       biRGBA,
	"rgb":        biRGB,
	"lighten":    biLighten,
	"darken":     biDarken,
	"mix":        biMix,
	"if":         biIf,
	"not":        biNot,
}

func biPercentage(args []value.Value) value.Value {
	n := mustNumberArg(args, 0, "percentage")
	return value.Number{Val: n.Val * 100, Unit: "%"}
}

func biQuote(args []value.Value) value.Value {
	s := argAt(args, 0)
	return value.String{Text: value.ToGoString(s), Quoted: true, QuoteChar: '"'}
}

func biUnquote(args []value.Value) value.Value {
	s := argAt(args, 0)
	return value.String{Text: value.ToGoString(s), Quoted: false}
}

func biRGB(args []value.Value) value.Value {
	return rgbaFrom(args, 1.0)
}

func biRGBA(args []value.Value) value.Value {
	alpha := 1.0
	if len(args) >= 4 {
		alpha = mustNumberArg(args, 3, "rgba").Val
	}
	return rgbaFrom(args, alpha)
}

func rgbaFrom(args []value.Value, alpha float64) value.Value {
	r := mustNumberArg(args, 0, "rgb")
	g := mustNumberArg(args, 1, "rgb")
	b := mustNumberArg(args, 2, "rgb")
	return value.Color{
		R: clampChannel(r.Val),
		G: clampChannel(g.Val),
		B: clampChannel(b.Val),
		A: clampUnit(alpha),
	}
}

func biLighten(args []value.Value) value.Value {
	return adjustLightness(args, 1)
}

func biDarken(args []value.Value) value.Value {
	return adjustLightness(args, -1)
}

func adjustLightness(args []value.Value, sign float64) value.Value {
	c := mustColorArg(args, 0, "lighten/darken")
	amount := mustNumberArg(args, 1, "lighten/darken")

	h, s, l := toColorful(c).Hsl()
	l += sign * (amount.Val / 100)
	if l < 0 {
		l = 0
	}
	if l > 1 {
		l = 1
	}
	out := colorful.Hsl(h, s, l)
	return fromColorful(out, c.A)
}

func biMix(args []value.Value) value.Value {
	c1 := mustColorArg(args, 0, "mix")
	c2 := mustColorArg(args, 1, "mix")
	weight := 0.5
	if len(args) >= 3 {
		weight = mustNumberArg(args, 2, "mix").Val / 100
	}
	blended := toColorful(c1).BlendRgb(toColorful(c2), 1-weight)
	return fromColorful(blended, c1.A*weight+c2.A*(1-weight))
}

func biIf(args []value.Value) value.Value {
	if len(args) < 3 {
		panic(fatalError{msg: "if() requires 3 arguments"})
	}
	if args[0].Truthy() {
		return args[1]
	}
	return args[2]
}

func biNot(args []value.Value) value.Value {
	return value.Bool(!argAt(args, 0).Truthy())
}

func toColorful(c value.Color) colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

func fromColorful(c colorful.Color, alpha float64) value.Color {
	r, g, b := c.Clamped().RGB255()
	return value.Color{R: r, G: g, B: b, A: alpha}
}

func clampChannel(f float64) uint8 {
	if f < 0 {
		return 0
	}
	if f > 255 {
		return 255
	}
	return uint8(f)
}

func clampUnit(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func argAt(args []value.Value, i int) value.Value {
	if i >= len(args) {
		return value.Null{}
	}
	return args[i]
}

func mustNumberArg(args []value.Value, i int, fn string) value.Number {
	n, ok := argAt(args, i).(value.Number)
	if !ok {
		panic(fatalError{msg: fmt.Sprintf("%s() expects a number at argument %d", fn, i+1)})
	}
	return n
}

func mustColorArg(args []value.Value, i int, fn string) value.Color {
	c, ok := argAt(args, i).(value.Color)
	if !ok {
		panic(fatalError{msg: fmt.Sprintf("%s() expects a color at argument %d", fn, i+1)})
	}
	return c
}
