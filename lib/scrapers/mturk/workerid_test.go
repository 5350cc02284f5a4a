package mturk

import (
	"testing"

	"mturk-extractor/lib/testutil"

	"github.com/stretchr/testify/require"
)

func TestWorkerIdStrategies(t *testing.T) {
	cases := []struct {
		name   string
		page   string
		expect string
		found  bool
	}{
		{
			name:   "copy props with double encoded entities",
			page:   `<div data-react-props="{&amp;quot;textToCopy&amp;quot;:&amp;quot;A2ZZZZZZZZ&amp;quot;}"></div>`,
			expect: "A2ZZZZZZZZ",
			found:  true,
		},
		{
			name:  "copy props rejects lowercase",
			page:  `<div data-react-props='{"textToCopy":"a2zzzzzzzz"}'></div>`,
			found: false,
		},
		{
			name:  "copy props skips invalid json",
			page:  `<div data-react-props='{"textToCopy":'></div>`,
			found: false,
		},
	}

	for _, test := range cases {
		t.Run(test.name, func(t *testing.T) {
			id, found := workerIdFromCopyProps(snapshotFromString(t, test.page))
			require.Equal(t, test.found, found)
			require.Equal(t, test.expect, id)
		})
	}
}

func TestWorkerIdFromUppercaseSpan(t *testing.T) {
	snap := snapshotFromString(t, `<div class="text-uppercase"><span>short</span><span> A1B2C3D4E5F6 </span></div>`)

	id, found := workerIdFromUppercaseSpan(snap)
	require.True(t, found)
	require.Equal(t, "A1B2C3D4E5F6", id)

	e := NewExtractor(testutil.NewRecordingAPI())
	require.Equal(t, "A1B2C3D4E5F6", e.WorkerId(snap))
}

func TestWorkerIdFromPageText(t *testing.T) {
	snap := snapshotFromString(t, `<p>Signed in as worker A9XYZ12345678, welcome back.</p>`)
	id, found := workerIdFromPageText(snap)
	require.True(t, found)
	require.Equal(t, "A9XYZ12345678", id)

	// the leftmost match wins, xA9XYZ12345678 has no word boundary before the A
	snap = snapshotFromString(t, `<p>ABCDEFGHIJKLMNOPQRSTUVWXYZ then xA9XYZ12345678</p>`)
	id, found = workerIdFromPageText(snap)
	require.True(t, found)
	require.Equal(t, "ABCDEFGHIJKLMNOPQRSTUVWXYZ", id)
}

func TestWorkerIdFromMeBar(t *testing.T) {
	id, found := workerIdFromMeBar(snapshotFromString(t, `<div class="me-bar">worker id:  A7QQ</div>`))
	require.True(t, found)
	require.Equal(t, "A7QQ", id)

	_, found = workerIdFromMeBar(snapshotFromString(t, `<div class="me-bar">Signed out</div>`))
	require.False(t, found)
}

func TestWorkerIdFromPropsText(t *testing.T) {
	snap := snapshotFromString(t, `<span data-react-props='{"id":"A1"}'>A1QWERTYUIOP</span>`)
	id, found := workerIdFromPropsText(snap)
	require.True(t, found)
	require.Equal(t, "A1QWERTYUIOP", id)
}

func TestWorkerIdPriority(t *testing.T) {
	e := NewExtractor(testutil.NewRecordingAPI())

	// the copy button wins over the uppercase span even though both match
	snap := snapshotFromString(t, `
		<div class="text-uppercase"><span>A1SPANSPANSPAN</span></div>
		<div data-react-props='{"textToCopy":"A1COPYCOPY"}'></div>`)
	require.Equal(t, "A1COPYCOPY", e.WorkerId(snap))

	// nothing matches
	snap = snapshotFromString(t, `<div class="me-bar">Hello</div>`)
	require.Equal(t, NotAvailable, e.WorkerId(snap))
}
