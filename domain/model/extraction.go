package model

import (
	"bytes"
	"encoding/json"
)

// ExtractedContent mirrors the field schema requested from the LLM.
type ExtractedContent struct {
	Title          *string    `json:"Title"`
	Description    *string    `json:"Description"`
	ImageURL       StringList `json:"Image URL"`
	PublishDate    *string    `json:"Publish Date"`
	KeyPoints      StringList `json:"Key Points"`
	TargetAudience *string    `json:"Target Audience"`
	Tone           *string    `json:"Tone"`
}

// StringList accepts either a JSON string or an array of strings.
type StringList []string

func (s *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = nil
		return nil
	}
	if data[0] == '[' {
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*s = list
		return nil
	}
	var one string
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	if one == "" {
		*s = nil
		return nil
	}
	*s = StringList{one}
	return nil
}

// First returns the first element, or "" for an empty list.
func (s StringList) First() string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}
