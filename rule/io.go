package rule

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/corels/corels/bitvector"
)

/*
Read parses rules from a text stream with one rule per line in the form

	<feature-expression> <bitstring>

where the bitstring has one '0' or '1' character per sample; whitespace
between bitstring characters is ignored. It returns the parsed rules,
the number of samples they span, or an error if a line is malformed or
the lines disagree on the sample count.
*/
func Read(r io.Reader) ([]Rule, int, error) {
	var rules []Rule
	nsamples := 0
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 64*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) < 2 {
			return nil, 0, fmt.Errorf("parsing line %d: expected feature expression and bitstring", line)
		}
		bits := strings.Join(fields[1:], "")
		tt, ones, err := bitvector.FromBitString(bits)
		if err != nil {
			return nil, 0, fmt.Errorf("parsing line %d: %v", line, err)
		}
		if nsamples == 0 {
			nsamples = tt.Len()
		} else if tt.Len() != nsamples {
			return nil, 0, fmt.Errorf("parsing line %d: %d samples instead of %d", line, tt.Len(), nsamples)
		}
		rules = append(rules, Rule{
			Features:    fields[0],
			Cardinality: CardinalityOf(fields[0]),
			Support:     ones,
			Truthtable:  tt,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("reading rules: %v", err)
	}
	if len(rules) == 0 {
		return nil, 0, fmt.Errorf("reading rules: no rules found")
	}
	return rules, nsamples, nil
}

/*
ReadFromFilePath opens the file at the given path and parses rules from
it with Read. An empty path reads from os.Stdin.
*/
func ReadFromFilePath(path string) ([]Rule, int, error) {
	var f *os.File
	var err error
	if path == "" {
		f = os.Stdin
	} else {
		f, err = os.Open(path)
		if err != nil {
			return nil, 0, fmt.Errorf("opening rules at %s: %v", path, err)
		}
		defer f.Close()
	}
	rules, nsamples, err := Read(f)
	if err != nil && path != "" {
		err = fmt.Errorf("parsing rules file %s: %v", path, err)
	}
	return rules, nsamples, err
}

/*
Write dumps rules to a text stream in the format Read parses, one rule
per line. It returns an error if the writer fails.
*/
func Write(w io.Writer, rules []Rule) error {
	for _, r := range rules {
		if _, err := fmt.Fprintf(w, "%s %s\n", r.Features, r.Truthtable.BitString()); err != nil {
			return fmt.Errorf("writing rule %q: %v", r.Features, err)
		}
	}
	return nil
}
