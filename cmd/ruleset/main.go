package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	json "github.com/goccy/go-json"

	ruleset "github.com/restkit/ruleset"
	"github.com/restkit/ruleset/schemafile"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	switch os.Args[1] {
	case "emit":
		emitCmd(os.Args[2:])
	case "check":
		checkCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "ruleset CLI\n\nUsage:\n  ruleset emit -schema def.yaml [-include a,b] [-exclude c] [-optional d] [-required e] [-allow-unknown] [-coerce]\n  ruleset check -schema def.yaml -payload doc.json [same override flags]\n\nemit prints the effective wire schema; check validates a payload and prints the result.")
}

type overrideFlags struct {
	schema       string
	include      string
	exclude      string
	optional     string
	required     string
	allowUnknown bool
	coerce       bool
}

func bindOverrideFlags(fs *flag.FlagSet) *overrideFlags {
	of := &overrideFlags{}
	fs.StringVar(&of.schema, "schema", "", "schema definition file (YAML or JSON)")
	fs.StringVar(&of.include, "include", "", "comma-separated whitelist paths")
	fs.StringVar(&of.exclude, "exclude", "", "comma-separated blacklist paths")
	fs.StringVar(&of.optional, "optional", "", "comma-separated paths forced optional")
	fs.StringVar(&of.required, "required", "", "comma-separated paths forced required")
	fs.BoolVar(&of.allowUnknown, "allow-unknown", false, "keep unknown properties instead of stripping them")
	fs.BoolVar(&of.coerce, "coerce", false, "coerce compatible primitive types")
	return of
}

func (of *overrideFlags) build() (any, ruleset.Overrides, ruleset.Options, error) {
	var schema any
	if of.schema != "" {
		s, err := schemafile.Load(of.schema)
		if err != nil {
			return nil, ruleset.Overrides{}, ruleset.Options{}, err
		}
		schema = s
	}
	ov := ruleset.Overrides{
		Include:  splitCSV(of.include),
		Exclude:  splitCSV(of.exclude),
		Optional: splitCSV(of.optional),
		Required: splitCSV(of.required),
	}
	opt := ruleset.Options{AllowUnknown: of.allowUnknown, CoerceTypes: of.coerce}
	return schema, ov, opt, nil
}

func emitCmd(args []string) {
	fs := flag.NewFlagSet("emit", flag.ExitOnError)
	of := bindOverrideFlags(fs)
	_ = fs.Parse(args)
	schema, ov, opt, err := of.build()
	if err != nil {
		fatalf("%v", err)
	}
	ws, err := ruleset.EmitWireSchema(schema, ov, opt)
	if err != nil {
		fatalf("emit: %v", err)
	}
	printJSON(ws)
}

func checkCmd(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	of := bindOverrideFlags(fs)
	var payloadFile string
	fs.StringVar(&payloadFile, "payload", "", "JSON payload file")
	_ = fs.Parse(args)
	if payloadFile == "" {
		fs.Usage()
		os.Exit(2)
	}
	schema, ov, opt, err := of.build()
	if err != nil {
		fatalf("%v", err)
	}
	validate, err := ruleset.BuildValidator(schema, ov, opt)
	if err != nil {
		fatalf("compile: %v", err)
	}
	data, err := os.ReadFile(payloadFile)
	if err != nil {
		fatalf("%v", err)
	}
	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		fatalf("payload: %v", err)
	}
	res := validate(payload)
	printJSON(res)
	if !res.OK {
		os.Exit(1)
	}
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fatalf("encode: %v", err)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(2)
}
