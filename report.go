package corels

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/corels/corels/bitvector"
	"github.com/corels/corels/rule"
)

/*
WriteRuleList writes a learned rule list as semicolon-separated
feature~prediction tuples with a trailing default~prediction entry,
for example

	{age<25}~1;{income=high}~0;default~1

predictions must hold one entry per rule id plus the trailing default.
*/
func WriteRuleList(w io.Writer, cat *rule.Catalogue, ruleList []uint16, predictions []bool) error {
	if len(predictions) != len(ruleList)+1 {
		return fmt.Errorf("writing rule list: %d predictions for %d rules", len(predictions), len(ruleList))
	}
	var b strings.Builder
	for i, id := range ruleList {
		if int(id) >= cat.NRules() {
			return fmt.Errorf("writing rule list: rule id %d out of range", id)
		}
		fmt.Fprintf(&b, "%s~%s;", cat.Rule(int(id)).Features, predictionString(predictions[i]))
	}
	fmt.Fprintf(&b, "default~%s\n", predictionString(predictions[len(predictions)-1]))
	_, err := io.WriteString(w, b.String())
	if err != nil {
		return fmt.Errorf("writing rule list: %v", err)
	}
	return nil
}

/*
ReadRuleList parses the format written by WriteRuleList back into rule
ids and predictions, resolving feature expressions against the given
catalogue. The final tuple must be the default entry.
*/
func ReadRuleList(r io.Reader, cat *rule.Catalogue) ([]uint16, []bool, error) {
	br := bufio.NewReader(r)
	line, err := br.ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, nil, fmt.Errorf("reading rule list: %v", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, nil, fmt.Errorf("reading rule list: empty input")
	}

	byFeatures := make(map[string]uint16, cat.NRules())
	for i := 1; i < cat.NRules(); i++ {
		byFeatures[cat.Rule(i).Features] = uint16(i)
	}

	var ruleList []uint16
	var predictions []bool
	entries := strings.Split(line, ";")
	for i, entry := range entries {
		parts := strings.SplitN(entry, "~", 2)
		if len(parts) != 2 {
			return nil, nil, fmt.Errorf("reading rule list: malformed entry %q", entry)
		}
		pred, err := parsePrediction(parts[1])
		if err != nil {
			return nil, nil, fmt.Errorf("reading rule list: entry %q: %v", entry, err)
		}
		if parts[0] == rule.DefaultFeatures {
			if i != len(entries)-1 {
				return nil, nil, fmt.Errorf("reading rule list: default entry before the end")
			}
			predictions = append(predictions, pred)
			return ruleList, predictions, nil
		}
		id, ok := byFeatures[parts[0]]
		if !ok {
			return nil, nil, fmt.Errorf("reading rule list: unknown rule %q", parts[0])
		}
		ruleList = append(ruleList, id)
		predictions = append(predictions, pred)
	}
	return nil, nil, fmt.Errorf("reading rule list: missing default entry")
}

/*
EvaluateRuleList computes the accuracy of an arbitrary rule list with
per-rule predictions over the catalogue's labels: samples are claimed
top-to-bottom by the first matching rule and leftovers fall to the
default prediction.
*/
func EvaluateRuleList(cat *rule.Catalogue, ruleList []uint16, predictions []bool) (float64, error) {
	if len(predictions) != len(ruleList)+1 {
		return 0, fmt.Errorf("evaluating rule list: %d predictions for %d rules", len(predictions), len(ruleList))
	}
	nsamples := cat.NSamples()
	notCaptured := bitvector.Ones(nsamples)
	captured := bitvector.New(nsamples)
	scratch := bitvector.New(nsamples)
	correct := 0
	for i, id := range ruleList {
		if int(id) < 1 || int(id) >= cat.NRules() {
			return 0, fmt.Errorf("evaluating rule list: rule id %d out of range", id)
		}
		captured.And(notCaptured, cat.Rule(int(id)).Truthtable)
		correct += scratch.And(captured, labelFor(cat, predictions[i]).Truthtable)
		notCaptured.AndNot(notCaptured, captured)
	}
	correct += scratch.And(notCaptured, labelFor(cat, predictions[len(predictions)-1]).Truthtable)
	return float64(correct) / float64(nsamples), nil
}

func labelFor(cat *rule.Catalogue, prediction bool) rule.Rule {
	if prediction {
		return cat.Label(1)
	}
	return cat.Label(0)
}

func predictionString(p bool) string {
	if p {
		return "1"
	}
	return "0"
}

func parsePrediction(s string) (bool, error) {
	switch strings.TrimSpace(s) {
	case "0":
		return false, nil
	case "1":
		return true, nil
	}
	return false, fmt.Errorf("invalid prediction %q", s)
}
