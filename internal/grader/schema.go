package grader

// schema is the subset of the Gemini response-schema vocabulary the report
// contract needs.
type schema struct {
	Type       string             `json:"type"`
	Properties map[string]*schema `json:"properties,omitempty"`
	Items      *schema            `json:"items,omitempty"`
	Required   []string           `json:"required,omitempty"`
}

// reportSchema is the strict output contract for an evaluation call. The
// model must return exactly this shape or the call fails as malformed.
func reportSchema() *schema {
	return &schema{
		Type: "OBJECT",
		Properties: map[string]*schema{
			"studentInfo": {
				Type: "OBJECT",
				Properties: map[string]*schema{
					"name":       {Type: "STRING"},
					"rollNumber": {Type: "STRING"},
					"subject":    {Type: "STRING"},
					"class":      {Type: "STRING"},
					"examName":   {Type: "STRING"},
					"date":       {Type: "STRING"},
				},
				Required: []string{"name", "subject"},
			},
			"grades": {
				Type: "ARRAY",
				Items: &schema{
					Type: "OBJECT",
					Properties: map[string]*schema{
						"questionNumber": {Type: "STRING"},
						"studentAnswer":  {Type: "STRING"},
						"correctAnswer":  {Type: "STRING"},
						"marksObtained":  {Type: "NUMBER"},
						"totalMarks":     {Type: "NUMBER"},
						"feedback":       {Type: "STRING"},
					},
					Required: []string{"questionNumber", "marksObtained", "totalMarks"},
				},
			},
			"totalScore":      {Type: "NUMBER"},
			"maxScore":        {Type: "NUMBER"},
			"percentage":      {Type: "NUMBER"},
			"generalFeedback": {Type: "STRING"},
		},
		Required: []string{"studentInfo", "grades", "totalScore", "maxScore", "percentage", "generalFeedback"},
	}
}
