package engine

import (
	"fmt"
	"sort"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/pipes/pkg/config"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource rewrites scene source before zygomys sees it:
//
//  1. :keyword becomes the string literal "__kw_keyword", so option names
//     need no registered symbols.
//  2. Kebab-case identifiers become snake_case. zygomys reads the hyphen
//     as subtraction.
//  3. ; line comments become // comments.
//
// String literals are copied untouched.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		switch {
		case b[i] == '"':
			j := i + 1
			for j < len(b) && b[j] != '"' {
				if b[j] == '\\' && j+1 < len(b) {
					j++
				}
				j++
			}
			j = min(j+1, len(b))
			result = append(result, b[i:j]...)
			i = j
			continue

		case b[i] == '`':
			j := i + 1
			for j < len(b) && b[j] != '`' {
				j++
			}
			j = min(j+1, len(b))
			result = append(result, b[i:j]...)
			i = j
			continue

		case b[i] == ';':
			result = append(result, '/', '/')
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue

		case b[i] == ':' && i+1 < len(b) && b[i+1] == '=':
			result = append(result, b[i], b[i+1])
			i += 2
			continue

		case b[i] == ':' && i+1 < len(b) && isLetter(b[i+1]):
			j := i + 1
			for j < len(b) && isKWChar(b[j]) {
				j++
			}
			result = append(result, '"')
			result = append(result, kwPrefix...)
			result = append(result, b[i+1:j]...)
			result = append(result, '"')
			i = j
			continue

		case b[i] == '-' && i > 0 && i+1 < len(b) && isIdentChar(b[i-1]) && isLetter(b[i+1]):
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
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW reports whether s is a preprocessed keyword and returns its name.
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
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i++
		} else {
			// A trailing keyword is a flag.
			result.kw[name] = &zygo.SexpBool{Val: true}
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

func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

func toBool(s zygo.Sexp) (bool, error) {
	if v, ok := s.(*zygo.SexpBool); ok {
		return v.Val, nil
	}
	return false, fmt.Errorf("expected true or false, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_flex) and plain strings ("flex").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	return strings.TrimPrefix(str.S, kwPrefix), nil
}

// ---------------------------------------------------------------------------
// Option tables
// ---------------------------------------------------------------------------

// setter stores one decoded option value into the configuration.
type setter func(s zygo.Sexp) error

func intOpt(dst *int) setter {
	return func(s zygo.Sexp) (err error) {
		*dst, err = toInt(s)
		return err
	}
}

func floatOpt(dst *float64) setter {
	return func(s zygo.Sexp) (err error) {
		*dst, err = toFloat64(s)
		return err
	}
}

func boolOpt(dst *bool) setter {
	return func(s zygo.Sexp) (err error) {
		*dst, err = toBool(s)
		return err
	}
}

func stringOpt(dst *string) setter {
	return func(s zygo.Sexp) (err error) {
		*dst, err = toString(s)
		return err
	}
}

func keywordOpt(dst *string) setter {
	return func(s zygo.Sexp) (err error) {
		*dst, err = toKeywordString(s)
		return err
	}
}

func durationOpt(dst *config.Duration) setter {
	return func(s zygo.Sexp) error {
		if n, ok := s.(*zygo.SexpInt); ok {
			*dst = config.Duration(n.Val)
			return nil
		}
		str, err := toString(s)
		if err != nil {
			return err
		}
		return dst.UnmarshalText([]byte(str))
	}
}

// section registers a builtin that applies keyword options from opts. Every
// keyword must name an option; positional arguments are rejected.
func section(env *zygo.Zlisp, fn string, opts map[string]setter) {
	env.AddFunction(fn, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		a := parseArgs(args)
		if len(a.positional) > 0 {
			return zygo.SexpNull, fmt.Errorf("%s: unexpected argument %s", fn, a.positional[0].SexpString(nil))
		}
		keys := make([]string, 0, len(a.kw))
		for k := range a.kw {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			set, ok := opts[k]
			if !ok {
				return zygo.SexpNull, fmt.Errorf("%s: unknown option :%s", fn, k)
			}
			if err := set(a.kw[k]); err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %s: %w", fn, k, err)
			}
		}
		return zygo.SexpNull, nil
	})
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the scene builtins into a zygomys environment.
// Each builtin overrides fields of cfg as the script runs.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, cfg *config.Config) {

	// (seed "sunday") or (seed 42)
	env.AddFunction("seed", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("seed requires exactly 1 argument, got %d", len(args))
		}
		switch v := args[0].(type) {
		case *zygo.SexpInt:
			cfg.Seed = fmt.Sprint(v.Val)
		case *zygo.SexpStr:
			cfg.Seed = v.S
		default:
			return zygo.SexpNull, fmt.Errorf("seed: expected number or string, got %T", args[0])
		}
		return zygo.SexpNull, nil
	})

	// (view :width 1920 :height 1080 :divisions 12 :div-size 7 :z-trans -75)
	section(env, "view", map[string]setter{
		"width":     intOpt(&cfg.View.Width),
		"height":    intOpt(&cfg.View.Height),
		"divisions": intOpt(&cfg.View.Divisions),
		"div-size":  floatOpt(&cfg.View.DivSize),
		"z-trans":   floatOpt(&cfg.View.ZTrans),
	})

	// (budget :pipes-per-frame 8 :max-slots 6 :turnomania 12)
	section(env, "budget", map[string]setter{
		"pipes-per-frame": intOpt(&cfg.Budget.PipesPerFrame),
		"max-slots":       intOpt(&cfg.Budget.MaxSlots),
		"turnomania":      intOpt(&cfg.Budget.TurnomaniaPipesPerFrame),
	})

	// (pipes :kind :flex :chase true :start :furthest :straight-weight 40)
	section(env, "pipes", map[string]setter{
		"kind":            keywordOpt(&cfg.Pipes.Kind),
		"chase":           boolOpt(&cfg.Pipes.Chase),
		"start":           keywordOpt(&cfg.Pipes.StartPos),
		"straight-weight": intOpt(&cfg.Pipes.StraightWeight),
	})

	// (joints :style :balls)
	section(env, "joints", map[string]setter{
		"style": keywordOpt(&cfg.Joints.Style),
	})

	// (geometry :radius 1.2 :tessellation 3 :profile :random :swept-balls true :kernel :sdfx)
	section(env, "geometry", map[string]setter{
		"radius":       floatOpt(&cfg.Geometry.Radius),
		"tessellation": intOpt(&cfg.Geometry.Tessellation),
		"profile":      keywordOpt(&cfg.Geometry.Profile),
		"swept-balls":  boolOpt(&cfg.Geometry.SweptBalls),
		"marker-cells": intOpt(&cfg.Geometry.MarkerCells),
		"kernel":       keywordOpt(&cfg.Geometry.Kernel),
	})

	// (output :frames 10 :tick "20ms" :json "frames.json" :stl "frame.stl" :listen ":8080")
	section(env, "output", map[string]setter{
		"frames": intOpt(&cfg.Output.Frames),
		"tick":   durationOpt(&cfg.Output.Tick),
		"json":   stringOpt(&cfg.Output.JSON),
		"stl":    stringOpt(&cfg.Output.STL),
		"listen": stringOpt(&cfg.Output.Listen),
	})
}
