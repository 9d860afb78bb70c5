package domain

import (
	"math"
	"time"
)

const (
	// PassingScorePercent is the minimum rounded score that passes an assessment.
	PassingScorePercent = 70
	// BankSampleLimit caps the number of questions sampled from the question bank.
	BankSampleLimit = 10
	// JobSpecificCategory is the category (and submitted quiz id) of job assessments.
	JobSpecificCategory = "Job Specific"
)

// Learner is the authenticated caller taking the quiz.
type Learner struct {
	ID    string
	Token string
}

// Job is the subset of a job post the quiz engine reads.
type Job struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Skills        []string   `json:"skills"`
	QuizEnabled   bool       `json:"quizEnabled"`
	QuizQuestions []Question `json:"quizQuestions"`
}

// Question is a four-option MCQ with exactly one correct option.
type Question struct {
	ID                 string   `json:"id"`
	Text               string   `json:"question" validate:"required"`
	Options            []string `json:"options" validate:"len=4,dive,required"`
	CorrectOptionIndex int      `json:"correctAnswerIndex" validate:"min=0,max=3"`
	Explanation        string   `json:"explanation,omitempty"`
	Difficulty         string   `json:"difficulty,omitempty" validate:"omitempty,oneof=Easy Medium Hard"`
	Category           string   `json:"category,omitempty"`
}

// Quiz is assembled from a job and never mutated after load.
type Quiz struct {
	ID                  string     `json:"id"`
	Title               string     `json:"title"`
	Description         string     `json:"description"`
	Questions           []Question `json:"questions"`
	TimeLimitMinutes    int        `json:"timeLimit"`
	PassingScorePercent int        `json:"passingScore"`
	Category            string     `json:"category"`
	JobTitle            string     `json:"jobTitle,omitempty"`
	JobSkills           []string   `json:"jobSkills,omitempty"`
}

// TimeLimitMinutes returns ceil(0.2 * questionCount) using integer math.
func TimeLimitMinutes(questionCount int) int {
	if questionCount <= 0 {
		return 0
	}
	return (questionCount + 4) / 5
}

// AnswerMap maps question id to the selected option index.
type AnswerMap map[string]int

// Clone returns an independent copy; nil maps clone to an empty map.
func (a AnswerMap) Clone() AnswerMap {
	out := make(AnswerMap, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Grade is the correctness breakdown of an answer map against a quiz.
type Grade struct {
	Correct   int
	Incorrect int
	Skipped   int
	Total     int
}

// Grade counts correct, incorrect and skipped questions.
func (q Quiz) Grade(answers AnswerMap) Grade {
	g := Grade{Total: len(q.Questions)}
	for _, question := range q.Questions {
		selected, ok := answers[question.ID]
		switch {
		case !ok:
			g.Skipped++
		case selected == question.CorrectOptionIndex:
			g.Correct++
		default:
			g.Incorrect++
		}
	}
	return g
}

// Percent is correct / total * 100, unrounded.
func (g Grade) Percent() float64 {
	if g.Total == 0 {
		return 0
	}
	return float64(g.Correct) / float64(g.Total) * 100
}

// Score is the percent rounded half away from zero.
func (g Grade) Score() int {
	return int(math.Round(g.Percent()))
}

// Status tags the outcome sent to the results endpoint.
type Status string

const (
	StatusSubmitted    Status = "SUBMITTED"
	StatusDisqualified Status = "DISQUALIFIED"
)

// SubmissionPayload is the body of POST /api/quizzes/submit-result.
type SubmissionPayload struct {
	UserID      string    `json:"userId"`
	JobID       string    `json:"jobId"`
	QuizID      string    `json:"quizId"`
	Score       int       `json:"score"`
	Passed      bool      `json:"passed"`
	UserAnswers AnswerMap `json:"userAnswers"`
	Status      Status    `json:"status"`
}

// NewSubmissionPayload builds the payload for a terminated session. Disqualified
// sessions forfeit their answers and always score 0.
func NewSubmissionPayload(learnerID string, quiz Quiz, answers AnswerMap, status Status) SubmissionPayload {
	payload := SubmissionPayload{
		UserID:      learnerID,
		JobID:       quiz.ID,
		QuizID:      quiz.Category,
		UserAnswers: AnswerMap{},
		Status:      status,
	}
	if status == StatusDisqualified {
		return payload
	}
	score := quiz.Grade(answers).Score()
	payload.Score = score
	payload.Passed = score >= quiz.PassingScorePercent
	payload.UserAnswers = answers.Clone()
	return payload
}

// Results is what the results screen shows after a normal submission.
type Results struct {
	Score        float64 `json:"score"`
	Passed       bool    `json:"passed"`
	Correct      int     `json:"correct"`
	Incorrect    int     `json:"incorrect"`
	Skipped      int     `json:"skipped"`
	PassingScore int     `json:"passingScore"`
}

// NewResults renders a grade for the results screen with one decimal of precision.
func NewResults(quiz Quiz, answers AnswerMap) Results {
	g := quiz.Grade(answers)
	return Results{
		Score:        math.Round(g.Percent()*10) / 10,
		Passed:       g.Score() >= quiz.PassingScorePercent,
		Correct:      g.Correct,
		Incorrect:    g.Incorrect,
		Skipped:      g.Skipped,
		PassingScore: quiz.PassingScorePercent,
	}
}

// Attempt is a successfully submitted quiz attempt.
type Attempt struct {
	UserID      string    `json:"userId"`
	JobID       string    `json:"jobId"`
	Status      Status    `json:"status"`
	Score       int       `json:"score"`
	Passed      bool      `json:"passed"`
	SubmittedAt time.Time `json:"submittedAt"`
}
