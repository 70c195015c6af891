package model

// Response is one answered question
type Response struct {
	QuestionID string `json:"questionId"`
	Value      string `json:"value"`
}

// Responses holds answers in catalog order. Entries are only ever appended.
type Responses []Response

// Get returns the answer recorded for a question id
func (r Responses) Get(questionID string) (string, bool) {
	for _, resp := range r {
		if resp.QuestionID == questionID {
			return resp.Value, true
		}
	}
	return "", false
}

// Value returns the answer for a question id, or "" if unanswered
func (r Responses) Value(questionID string) string {
	v, _ := r.Get(questionID)
	return v
}

// Clone returns a copy that does not share backing storage
func (r Responses) Clone() Responses {
	if r == nil {
		return Responses{}
	}
	out := make(Responses, len(r))
	copy(out, r)
	return out
}

// Map flattens the responses for display
func (r Responses) Map() map[string]string {
	m := make(map[string]string, len(r))
	for _, resp := range r {
		m[resp.QuestionID] = resp.Value
	}
	return m
}
