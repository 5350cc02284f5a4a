package mturk

import (
	"encoding/json"
	"regexp"

	"mturk-extractor/lib/htmlutil"
	"mturk-extractor/lib/textutil"
)

var (
	workerIdExact  = regexp.MustCompile(`^A[0-9A-Z]+$`)
	workerIdLong   = regexp.MustCompile(`^A[0-9A-Z]{10,}$`)
	workerIdInText = regexp.MustCompile(`\b(A[0-9A-Z]{10,})\b`)
	workerIdLabel  = regexp.MustCompile(`(?i)Worker\s+ID:\s*(A[0-9A-Z]+)`)
)

// Strategy is one way of finding a value on the page.
type Strategy struct {
	Name string
	Find func(snap htmlutil.Snapshot) (string, bool)
}

// WorkerIdStrategies are tried in order, the first one to find something
// wins. The earlier ones are both more specific and cheaper.
var WorkerIdStrategies = []Strategy{
	{Name: "copy-props", Find: workerIdFromCopyProps},
	{Name: "uppercase-span", Find: workerIdFromUppercaseSpan},
	{Name: "page-text", Find: workerIdFromPageText},
	{Name: "me-bar-label", Find: workerIdFromMeBar},
	{Name: "props-text", Find: workerIdFromPropsText},
}

// the "copy worker id" button carries the id in its props.
func workerIdFromCopyProps(snap htmlutil.Snapshot) (string, bool) {
	for _, el := range snap.QueryAll(`[data-react-props*="textToCopy"]`) {
		props, _ := el.Attr("data-react-props")
		if props == "" {
			continue
		}

		var parsed map[string]any
		err := json.Unmarshal([]byte(htmlutil.UnescapeEntities(props)), &parsed)
		if err != nil {
			continue
		}
		text, ok := parsed["textToCopy"].(string)
		if ok && workerIdExact.MatchString(text) {
			return text, true
		}
	}
	return "", false
}

func workerIdFromUppercaseSpan(snap htmlutil.Snapshot) (string, bool) {
	for _, el := range snap.QueryAll(".text-uppercase span") {
		text := textutil.Trim(el.Text())
		if workerIdLong.MatchString(text) {
			return text, true
		}
	}
	return "", false
}

func workerIdFromPageText(snap htmlutil.Snapshot) (string, bool) {
	for _, el := range snap.QueryAll("*") {
		id, ok := textutil.FirstSubmatch(workerIdInText, textutil.Trim(el.Text()))
		if ok {
			return id, true
		}
	}
	return "", false
}

func workerIdFromMeBar(snap htmlutil.Snapshot) (string, bool) {
	section := snap.QueryAll(".me-bar")
	if len(section) == 0 {
		return "", false
	}
	return textutil.FirstSubmatch(workerIdLabel, section[0].Text())
}

func workerIdFromPropsText(snap htmlutil.Snapshot) (string, bool) {
	matches := snap.QueryAll(`[data-react-props*="A1"]`)
	if len(matches) == 0 {
		return "", false
	}
	text := textutil.Trim(matches[0].Text())
	if workerIdLong.MatchString(text) {
		return text, true
	}
	return "", false
}
