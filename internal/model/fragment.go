package model

// Fragment is a single recognized text span anchored at the top-left corner
// of its bounding polygon.
type Fragment struct {
	// Text is the recognized text, trimmed and never empty.
	Text string `json:"text"`

	// Y is the minimum y over the polygon vertices.
	Y int `json:"y"`

	// X is the minimum x over the polygon vertices.
	X int `json:"x"`
}

// Row is a run of fragments sharing a vertical band, ordered by X once built.
type Row []Fragment
