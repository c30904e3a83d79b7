package services

import (
	"errors"
	"testing"

	"testlab/models"
	"testlab/store"
)

func TestAvailableTests_ExcludesInactiveAndAttempted(t *testing.T) {
	st := store.NewMemoryStore()
	testSvc := NewTestService(st)
	attemptSvc := NewAttemptService(st, nil)

	attempted := seedTest(t, st, mcQuestion(1, 0, "A", "B"))
	open := seedTest(t, st, mcQuestion(1, 0, "C", "D"))

	draft := &models.Test{Title: "Draft", IsActive: false}
	if err := st.CreateTest(draft); err != nil {
		t.Fatalf("CreateTest: %v", err)
	}

	if _, err := attemptSvc.Submit(7, attempted.ID, map[uint]string{}); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	available, err := testSvc.AvailableTests(7)
	if err != nil {
		t.Fatalf("AvailableTests: %v", err)
	}
	if len(available) != 1 || available[0].ID != open.ID {
		t.Fatalf("catalog = %v, want only test %d", testIDs(available), open.ID)
	}

	// A different student still sees both active tests.
	available, err = testSvc.AvailableTests(8)
	if err != nil {
		t.Fatalf("AvailableTests: %v", err)
	}
	if len(available) != 2 {
		t.Fatalf("catalog for fresh user = %v, want 2 tests", testIDs(available))
	}
}

func testIDs(tests []models.Test) []uint {
	ids := make([]uint, len(tests))
	for i, tt := range tests {
		ids[i] = tt.ID
	}
	return ids
}

func TestDeleteTest_CascadesToAttemptsAndAnswers(t *testing.T) {
	st := store.NewMemoryStore()
	testSvc := NewTestService(st)
	attemptSvc := NewAttemptService(st, nil)

	test := seedTest(t, st, mcQuestion(1, 0, "A", "B"), textQuestion(2))
	attempt, err := attemptSvc.Submit(7, test.ID, map[uint]string{})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if err := testSvc.DeleteTest(test.ID); err != nil {
		t.Fatalf("DeleteTest: %v", err)
	}

	if _, err := st.FindTestWithQuestions(test.ID); !errors.Is(err, store.ErrTestNotFound) {
		t.Errorf("test still present after delete: %v", err)
	}
	if _, err := st.FindAttempt(7, test.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("attempt still present after delete: %v", err)
	}
	answers, _ := st.ListAnswersForAttempt(attempt.ID)
	if len(answers) != 0 {
		t.Errorf("%d answers survived the cascade", len(answers))
	}

	if err := testSvc.DeleteTest(test.ID); !errors.Is(err, store.ErrTestNotFound) {
		t.Errorf("second delete error = %v, want ErrTestNotFound", err)
	}
}

func TestReplaceQuestions_Validation(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewTestService(st)

	test, err := svc.CreateTest(&CreateTestRequest{Title: "Protocols"})
	if err != nil {
		t.Fatalf("CreateTest: %v", err)
	}

	tests := []struct {
		name    string
		reqs    []SaveQuestionRequest
		wantErr bool
	}{
		{
			name: "multiple choice with one option",
			reqs: []SaveQuestionRequest{{
				Type: models.QuestionMultipleChoice, Text: "q", Order: 1,
				Options: []SaveOptionRequest{{Text: "A", IsCorrect: true, Order: 1}},
			}},
			wantErr: true,
		},
		{
			name: "two options flagged correct",
			reqs: []SaveQuestionRequest{{
				Type: models.QuestionMultipleChoice, Text: "q", Order: 1,
				Options: []SaveOptionRequest{
					{Text: "A", IsCorrect: true, Order: 1},
					{Text: "B", IsCorrect: true, Order: 2},
				},
			}},
			wantErr: true,
		},
		{
			name: "text question with options",
			reqs: []SaveQuestionRequest{{
				Type: models.QuestionText, Text: "q", Order: 1,
				Options: []SaveOptionRequest{{Text: "A", Order: 1}},
			}},
			wantErr: true,
		},
		{
			name: "valid mixed set",
			reqs: []SaveQuestionRequest{
				{
					Type: models.QuestionMultipleChoice, Text: "q1", Order: 1,
					Options: []SaveOptionRequest{
						{Text: "A", IsCorrect: true, Order: 1},
						{Text: "B", Order: 2},
					},
				},
				{Type: models.QuestionText, Text: "q2", Order: 2},
			},
		},
		{
			name: "no option flagged correct is allowed",
			reqs: []SaveQuestionRequest{{
				Type: models.QuestionMultipleChoice, Text: "q", Order: 1,
				Options: []SaveOptionRequest{
					{Text: "A", Order: 1},
					{Text: "B", Order: 2},
				},
			}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.ReplaceQuestions(test.ID, tc.reqs)
			if tc.wantErr && err == nil {
				t.Fatal("expected an error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestReplaceQuestions_SwapsWholeSet(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewTestService(st)

	test := seedTest(t, st, mcQuestion(1, 0, "A", "B"), mcQuestion(2, 0, "C", "D"))
	oldFirst := questionID(t, test, 1)

	err := svc.ReplaceQuestions(test.ID, []SaveQuestionRequest{
		{Type: models.QuestionText, Text: "only question now", Order: 1},
	})
	if err != nil {
		t.Fatalf("ReplaceQuestions: %v", err)
	}

	reloaded, err := st.FindTestWithQuestions(test.ID)
	if err != nil {
		t.Fatalf("FindTestWithQuestions: %v", err)
	}
	if len(reloaded.Questions) != 1 {
		t.Fatalf("got %d questions, want 1", len(reloaded.Questions))
	}
	if reloaded.Questions[0].ID == oldFirst {
		t.Errorf("old question survived the replacement")
	}
	if reloaded.Questions[0].Type != models.QuestionText {
		t.Errorf("question type = %s, want TEXT", reloaded.Questions[0].Type)
	}
}

func TestUpdateTest_PartialFields(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewTestService(st)

	limit := 30
	test, err := svc.CreateTest(&CreateTestRequest{Title: "Before", TimeLimit: &limit})
	if err != nil {
		t.Fatalf("CreateTest: %v", err)
	}
	if !test.IsActive {
		t.Fatal("new test should default to active")
	}

	inactive := false
	updated, err := svc.UpdateTest(test.ID, &UpdateTestRequest{Title: "After", IsActive: &inactive})
	if err != nil {
		t.Fatalf("UpdateTest: %v", err)
	}
	if updated.Title != "After" {
		t.Errorf("title = %q, want %q", updated.Title, "After")
	}
	if updated.IsActive {
		t.Errorf("test still active after deactivation")
	}
	if updated.TimeLimit == nil || *updated.TimeLimit != 30 {
		t.Errorf("time limit changed by unrelated update")
	}
}
