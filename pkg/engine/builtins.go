package engine

import (
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/seagrove/graspkit/pkg/field"
	"github.com/seagrove/graspkit/pkg/scene"
	"github.com/seagrove/graspkit/pkg/scene/sdfx"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms scene script source before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: grasp-line -> grasp_line
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a
		// minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isLetter(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpSurface wraps a scene.Surface so shapes can flow between builtins.
type sexpSurface struct {
	surface scene.Surface
}

func (s *sexpSurface) SexpString(ps *zygo.PrintState) string {
	min, max := s.surface.Bounds()
	return fmt.Sprintf("(surface %.1fx%.1f)", max.X-min.X, max.Y-min.Y)
}
func (s *sexpSurface) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts an int from a Sexp.
func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toSurface extracts a scene.Surface from a sexpSurface.
func toSurface(s zygo.Sexp) (scene.Surface, error) {
	if v, ok := s.(*sexpSurface); ok {
		return v.surface, nil
	}
	return nil, fmt.Errorf("expected surface, got %T (%s)", s, s.SexpString(nil))
}

// floats extracts n positional numbers, failing with the builtin name
// in the message.
func floats(name string, args []zygo.Sexp, n int) ([]float64, error) {
	if len(args) != n {
		return nil, fmt.Errorf("%s: expected %d numbers, got %d args", name, n, len(args))
	}
	out := make([]float64, n)
	for i, a := range args {
		f, err := toFloat64(a)
		if err != nil {
			return nil, fmt.Errorf("%s: arg %d: %w", name, i+1, err)
		}
		out[i] = f
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the scene DSL builtins into a zygomys
// environment. The builtins populate the provided plan during
// evaluation.
//
// Source code must be preprocessed with preprocessSource() before
// evaluation so that :keyword tokens are converted to recognizable
// string literals and kebab-case names (grasp-line) reach their
// underscore registrations (grasp_line).
func registerBuiltins(env *zygo.Zlisp, plan *scene.Plan) {

	// -----------------------------------------------------------------------
	// (name "pipe-connector")
	// -----------------------------------------------------------------------
	env.AddFunction("name", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("name: expected 1 string argument")
		}
		s, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("name: %w", err)
		}
		plan.Name = s
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (circle :r 40)  or  (circle 40)
	// -----------------------------------------------------------------------
	env.AddFunction("circle", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		var rSexp zygo.Sexp
		if v, ok := pa.kw["r"]; ok {
			rSexp = v
		} else if len(pa.positional) == 1 {
			rSexp = pa.positional[0]
		} else {
			return zygo.SexpNull, fmt.Errorf("circle: expected :r radius")
		}
		r, err := toFloat64(rSexp)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("circle: r: %w", err)
		}
		if r <= 0 {
			return zygo.SexpNull, fmt.Errorf("circle: radius must be positive, got %v", r)
		}
		return &sexpSurface{surface: sdfx.Circle(r)}, nil
	})

	// -----------------------------------------------------------------------
	// (box :w 60 :h 30)
	// -----------------------------------------------------------------------
	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		w, h := 0.0, 0.0
		var err error
		if v, ok := pa.kw["w"]; ok {
			if w, err = toFloat64(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("box: w: %w", err)
			}
		}
		if v, ok := pa.kw["h"]; ok {
			if h, err = toFloat64(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("box: h: %w", err)
			}
		}
		if len(pa.positional) == 2 {
			if w, err = toFloat64(pa.positional[0]); err != nil {
				return zygo.SexpNull, fmt.Errorf("box: width: %w", err)
			}
			if h, err = toFloat64(pa.positional[1]); err != nil {
				return zygo.SexpNull, fmt.Errorf("box: height: %w", err)
			}
		}
		if w <= 0 || h <= 0 {
			return zygo.SexpNull, fmt.Errorf("box: dimensions must be positive, got %vx%v", w, h)
		}
		return &sexpSurface{surface: sdfx.Box(w, h)}, nil
	})

	// -----------------------------------------------------------------------
	// (polygon x0 y0 x1 y1 x2 y2 ...)
	// -----------------------------------------------------------------------
	env.AddFunction("polygon", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 6 || len(args)%2 != 0 {
			return zygo.SexpNull, fmt.Errorf("polygon: expected an even number of coordinates for at least 3 vertices")
		}
		pts := make([]field.Vec2, len(args)/2)
		for i := range pts {
			x, err := toFloat64(args[2*i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("polygon: coordinate %d: %w", 2*i+1, err)
			}
			y, err := toFloat64(args[2*i+1])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("polygon: coordinate %d: %w", 2*i+2, err)
			}
			pts[i] = field.Vec2{X: x, Y: y}
		}
		return &sexpSurface{surface: sdfx.Polygon(pts)}, nil
	})

	// -----------------------------------------------------------------------
	// (union a b ...)
	// -----------------------------------------------------------------------
	env.AddFunction("union", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 {
			return zygo.SexpNull, fmt.Errorf("union: expected at least 2 surfaces")
		}
		surfaces := make([]scene.Surface, len(args))
		for i, a := range args {
			s, err := toSurface(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("union: arg %d: %w", i+1, err)
			}
			surfaces[i] = s
		}
		return &sexpSurface{surface: sdfx.Union(surfaces...)}, nil
	})

	// -----------------------------------------------------------------------
	// (difference a b)
	// -----------------------------------------------------------------------
	env.AddFunction("difference", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("difference: expected exactly 2 surfaces")
		}
		a, err := toSurface(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("difference: arg 1: %w", err)
		}
		b, err := toSurface(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("difference: arg 2: %w", err)
		}
		return &sexpSurface{surface: sdfx.Difference(a, b)}, nil
	})

	// -----------------------------------------------------------------------
	// (intersection a b)
	// -----------------------------------------------------------------------
	env.AddFunction("intersection", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("intersection: expected exactly 2 surfaces")
		}
		a, err := toSurface(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("intersection: arg 1: %w", err)
		}
		b, err := toSurface(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("intersection: arg 2: %w", err)
		}
		return &sexpSurface{surface: sdfx.Intersection(a, b)}, nil
	})

	// -----------------------------------------------------------------------
	// (translate s x y)
	// -----------------------------------------------------------------------
	env.AddFunction("translate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("translate: expected surface, x, y")
		}
		s, err := toSurface(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("translate: %w", err)
		}
		xy, err := floats("translate", args[1:], 2)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpSurface{surface: sdfx.Translate(s, xy[0], xy[1])}, nil
	})

	// -----------------------------------------------------------------------
	// (rotate s degrees)
	// -----------------------------------------------------------------------
	env.AddFunction("rotate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("rotate: expected surface, degrees")
		}
		s, err := toSurface(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rotate: %w", err)
		}
		deg, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rotate: degrees: %w", err)
		}
		return &sexpSurface{surface: sdfx.Rotate(s, deg)}, nil
	})

	// -----------------------------------------------------------------------
	// (shape s) — declares the object under test. Multiple calls union.
	// -----------------------------------------------------------------------
	env.AddFunction("shape", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("shape: expected exactly 1 surface")
		}
		s, err := toSurface(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("shape: %w", err)
		}
		if plan.Surface == nil {
			plan.Surface = s
		} else {
			plan.Surface = sdfx.Union(plan.Surface, s)
		}
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (grasp-line x0 y0 x1 y1) — one candidate line of action, in
	// world coordinates, walked from (x0,y0) toward (x1,y1).
	// -----------------------------------------------------------------------
	env.AddFunction("grasp_line", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		xs, err := floats("grasp-line", args, 4)
		if err != nil {
			return zygo.SexpNull, err
		}
		plan.Lines = append(plan.Lines,
			field.Vec2{X: xs[0], Y: xs[1]},
			field.Vec2{X: xs[2], Y: xs[3]},
		)
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (grid :dim 64 :truncation 4 :threshold 0.1)
	// -----------------------------------------------------------------------
	env.AddFunction("grid", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if v, ok := pa.kw["dim"]; ok {
			d, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("grid: dim: %w", err)
			}
			plan.Grid.Dim = d
		}
		if v, ok := pa.kw["truncation"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("grid: truncation: %w", err)
			}
			plan.Grid.Truncation = f
		}
		if v, ok := pa.kw["threshold"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("grid: threshold: %w", err)
			}
			plan.Grid.Threshold = f
		}
		return zygo.SexpNull, nil
	})
}
