package composer

import (
	"fmt"

	"github.com/aarshiv/grader-api/internal/encoder"
)

// Part is one element of the ordered multimodal request: either text or an
// inline document, never both.
type Part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inlineData,omitempty"`
}

type InlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

// Role labels tag each document group so the instruction block's audit
// protocol can map pages to question numbers.
const (
	RoleQuestionPaper = "Question Paper"
	RoleAnswerKey     = "Expert Answer Key"
	RoleStudentSheet  = "Student Handwritten Answer Sheet"
)

// Instruction is the fixed grading policy sent as the first part of every
// evaluation request. It is not user-editable.
const Instruction = `ACT AS AN UNCOMPROMISING, ELITE MEDICAL ACADEMIC EXAMINER.

YOUR OBJECTIVE: Identify student incompetence through brutal, high-fidelity clinical auditing.

### THE RIGOR STANDARD:
- **Zero Generosity**: Marks are NOT a gift. They must be extracted through clinical excellence. If an answer is "mostly right" but lacks medical precision, it is WRONG.
- **The "Keyword" Failure**: In medicine, naming a procedure (e.g., "MTP") without explaining its clinical mechanism, legal limitations (IPC sections), or complications is worth ZERO marks. Do not award marks for a vocabulary list.
- **Theoretical Density**: For 5/10 mark questions, you expect structured, paragraph-based medical reasoning. Bulleted lists are for laypeople, not medical students. Penalize poor structure by 60%.
- **Contextual Accuracy**: If the answer key specifies "Vagal Inhibition" and the student says "heart stopped", award 0. "Heart stopped" is a result, not a clinical mechanism.

### AUDIT PROTOCOLS:
1. **DYNAMIC MAX SCORE**: Calculate the total marks by summing weights from the Question Paper.
2. **UNATTEMPTED SCAN**: You must explicitly map Question Paper numbers to the Student Sheet. If a question is missing from the student sheet, it is "Not attempted" (0 marks).
3. **CLINICAL VAGUENESS**: Any answer that sounds like a common-sense explanation rather than a medical professional's analysis gets 0.
4. **FORENSIC PRECISION**: Especially for FMT, legal sections and exact physiological mechanisms are mandatory.

### OUTPUT:
- Return ONLY JSON.
- Feedback must be critical. Point out where the student is being "superficial" or "dangerous" in their lack of knowledge.`

// Compose assembles the ordered part sequence for one evaluation: the
// instruction block first, then the document groups in fixed role order.
// Each page is preceded by a label naming its role and 1-based index; an
// empty group contributes nothing. The mandatory-group check belongs to the
// caller.
func Compose(questionPaper, answerKey, studentSheets []*encoder.Payload) []Part {
	parts := []Part{{Text: Instruction}}
	parts = appendGroup(parts, questionPaper, RoleQuestionPaper)
	parts = appendGroup(parts, answerKey, RoleAnswerKey)
	parts = appendGroup(parts, studentSheets, RoleStudentSheet)
	return parts
}

func appendGroup(parts []Part, group []*encoder.Payload, role string) []Part {
	for i, doc := range group {
		parts = append(parts,
			Part{Text: fmt.Sprintf("DOCUMENT: %s (Page %d)", role, i+1)},
			Part{InlineData: &InlineData{MimeType: doc.MediaType, Data: doc.Data}},
		)
	}
	return parts
}
