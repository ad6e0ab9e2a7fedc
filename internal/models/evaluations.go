package models

// StudentInfo is the identity block the model extracts from the answer sheet
// header. Only name and subject are required by the response schema; the rest
// may come back empty.
type StudentInfo struct {
	Name       string `json:"name"`
	RollNumber string `json:"rollNumber"`
	Subject    string `json:"subject"`
	Class      string `json:"class"`
	ExamName   string `json:"examName"`
	Date       string `json:"date"`
}

// QuestionGrade is one itemized grade in an evaluation report.
type QuestionGrade struct {
	QuestionNumber string  `json:"questionNumber"`
	StudentAnswer  string  `json:"studentAnswer"`
	CorrectAnswer  string  `json:"correctAnswer"`
	MarksObtained  float64 `json:"marksObtained"`
	TotalMarks     float64 `json:"totalMarks"`
	Feedback       string  `json:"feedback"`
}

// EvaluationReport is the full graded result for one student script.
// TotalScore and Percentage are recomputed from Grades after every model call;
// the model's own values for those fields are never kept.
type EvaluationReport struct {
	StudentInfo     StudentInfo     `json:"studentInfo"`
	Grades          []QuestionGrade `json:"grades"`
	TotalScore      float64         `json:"totalScore"`
	MaxScore        float64         `json:"maxScore"`
	Percentage      float64         `json:"percentage"`
	GeneralFeedback string          `json:"generalFeedback"`
}

// HistoryItem is one persisted evaluation record, scoped to a user.
// Timestamp is unix milliseconds.
type HistoryItem struct {
	ID          string            `json:"id" db:"id"`
	UserID      string            `json:"userId" db:"user_id"`
	Timestamp   int64             `json:"timestamp" db:"timestamp"`
	Report      *EvaluationReport `json:"report"`
	SheetsCount int               `json:"sheetsCount" db:"sheets_count"`
}

// User is the identity carried by a session token. The API does not store
// users; the token is the record.
type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	Organization string `json:"organization"`
	CreatedAt    int64  `json:"createdAt"`
}

// BillingInfo is a derived projection over a user's history; it is never
// stored.
type BillingInfo struct {
	PendingAmount            float64 `json:"pendingAmount"`
	DueDate                  string  `json:"dueDate"`
	IsPaid                   bool    `json:"isPaid"`
	SheetsEvaluatedThisMonth int     `json:"sheetsEvaluatedThisMonth"`
}

// DashboardMetrics are the derived figures shown on the academic hub.
type DashboardMetrics struct {
	Evaluations       int     `json:"evaluations"`
	MonthlyCharge     float64 `json:"monthlyCharge"`
	AveragePercentage float64 `json:"averagePercentage"`
	RenewalDate       string  `json:"renewalDate"`
}

// UploadedDocument is one raw file pulled out of the multipart form.
type UploadedDocument struct {
	Filename    string
	ContentType string
	Data        []byte
}

// EvaluateRequest carries the three document groups for one evaluation.
// QuestionPaper and StudentSheets are mandatory; AnswerKey is optional.
type EvaluateRequest struct {
	QuestionPaper []UploadedDocument
	AnswerKey     []UploadedDocument
	StudentSheets []UploadedDocument
}

type LoginRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

type ConfigStatusResponse struct {
	HasAPIKey bool `json:"hasApiKey"`
}
