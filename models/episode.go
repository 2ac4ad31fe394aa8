package models

// Brief describes the episode a caller wants drafted. Optional fields are
// empty when absent.
type Brief struct {
	Topic         string
	Tone          string
	HostStyle     string
	Audience      string
	Duration      float64
	TalkingPoints string
	CallToAction  string
}

type Segment struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

// Draft is a normalized generation result. Nil pointers serialize as null.
type Draft struct {
	Script       string    `json:"script"`
	Segments     []Segment `json:"segments"`
	AudioURL     *string   `json:"audioUrl"`
	CallToAction *string   `json:"callToAction"`
	ModelID      *string   `json:"modelId"`
	Note         *string   `json:"note"`
}
