package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	j "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	jsonify "github.com/jsonify-go/jsonify"
)

func main() {
	fs := flag.NewFlagSet("jsonify", flag.ExitOnError)
	var (
		fromYAML bool
		indent   int
		allowCSV string
		inPath   string
		outPath  string
	)
	fs.BoolVar(&fromYAML, "yaml", false, "read YAML input; a multi-document stream becomes a JSON array")
	fs.IntVar(&indent, "indent", 0, "pretty-print with this many spaces per level")
	fs.StringVar(&allowCSV, "allow", "", "comma-separated key allowlist applied at every object level")
	fs.StringVar(&inPath, "i", "", "input file (default stdin)")
	fs.StringVar(&outPath, "o", "", "output file (default stdout)")
	_ = fs.Parse(os.Args[1:])

	in := io.Reader(os.Stdin)
	if inPath != "" {
		f, err := os.Open(inPath)
		if err != nil {
			fatalf("open input: %v", err)
		}
		defer f.Close()
		in = f
	}
	out := io.Writer(os.Stdout)
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			fatalf("create output: %v", err)
		}
		defer f.Close()
		out = f
	}

	var opt jsonify.EncodeOpt
	if indent > 0 {
		opt.Indent = strings.Repeat(" ", indent)
	}
	if allowCSV != "" {
		opt.Allow = splitCSV(allowCSV)
	}

	var root any
	var err error
	if fromYAML {
		root, err = yamlRoot(in)
	} else {
		root, err = jsonRoot(in)
	}
	if err != nil {
		fatalf("read input: %v", err)
	}

	s := jsonify.New(root, opt)
	if _, err := s.Pipe(context.Background(), out); err != nil {
		fatalf("serialize: %v", err)
	}
	fmt.Fprintln(out)
}

func jsonRoot(in io.Reader) (any, error) {
	dec := j.NewDecoder(in)
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// yamlRoot reads one YAML document, or exposes a multi-document stream as an
// ItemSource so the serializer emits documents as they are decoded.
func yamlRoot(in io.Reader) (any, error) {
	dec := yaml.NewDecoder(in)
	var first any
	if err := dec.Decode(&first); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	first = normalizeYAML(first)

	var second any
	if err := dec.Decode(&second); err != nil {
		if errors.Is(err, io.EOF) {
			return first, nil
		}
		return nil, err
	}
	second = normalizeYAML(second)

	queue := []any{first, second}
	return jsonify.ItemsFunc(func(ctx context.Context) (any, error) {
		if len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			return v, nil
		}
		var node any
		if err := dec.Decode(&node); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, io.EOF
			}
			return nil, err
		}
		return normalizeYAML(node), nil
	}), nil
}

// normalizeYAML rewrites yaml.v3's occasional map[any]any nodes into
// map[string]any so the serializer can walk them.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = normalizeYAML(e)
		}
		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[fmt.Sprint(k)] = normalizeYAML(e)
		}
		return m
	case []any:
		for i, e := range t {
			t[i] = normalizeYAML(e)
		}
		return t
	}
	return v
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
