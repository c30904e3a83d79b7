package store

import (
	"sort"
	"sync"
	"time"

	"testlab/models"
)

type attemptKey struct {
	userID uint
	testID uint
}

// MemoryStore is a mutex-guarded in-memory Store used by the test suites. It
// enforces the same (user, test) uniqueness as the Postgres unique index, so
// the race behavior of concurrent submissions can be exercised without a
// database.
type MemoryStore struct {
	mu          sync.Mutex
	users       map[uint]models.User
	tests       map[uint]models.Test
	questions   map[uint]models.Question
	options     map[uint]models.Option
	attempts    map[uint]models.Attempt
	answers     map[uint]models.Answer
	attemptKeys map[attemptKey]uint
	nextID      uint
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:       map[uint]models.User{},
		tests:       map[uint]models.Test{},
		questions:   map[uint]models.Question{},
		options:     map[uint]models.Option{},
		attempts:    map[uint]models.Attempt{},
		answers:     map[uint]models.Answer{},
		attemptKeys: map[attemptKey]uint{},
	}
}

func (m *MemoryStore) newID() uint {
	m.nextID++
	return m.nextID
}

func (m *MemoryStore) CreateUser(user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return ErrEmailTaken
		}
	}
	user.ID = m.newID()
	user.CreatedAt = time.Now()
	m.users[user.ID] = *user
	return nil
}

func (m *MemoryStore) FindUserByEmail(email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			user := u
			return &user, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) FindUserByID(id uint) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	user := u
	return &user, nil
}

func (m *MemoryStore) CreateTest(test *models.Test) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	test.ID = m.newID()
	test.CreatedAt = time.Now()
	m.storeQuestions(test.ID, test.Questions)
	stored := *test
	stored.Questions = nil
	m.tests[test.ID] = stored
	return nil
}

func (m *MemoryStore) SaveTest(test *models.Test) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.tests[test.ID]
	if !ok {
		return ErrTestNotFound
	}
	stored := *test
	stored.Questions = nil
	stored.CreatedAt = existing.CreatedAt
	m.tests[test.ID] = stored
	return nil
}

// storeQuestions assigns IDs and flattens a question tree into the maps.
// Caller holds the lock.
func (m *MemoryStore) storeQuestions(testID uint, questions []models.Question) {
	for i := range questions {
		questions[i].ID = m.newID()
		questions[i].TestID = testID
		for j := range questions[i].Options {
			questions[i].Options[j].ID = m.newID()
			questions[i].Options[j].QuestionID = questions[i].ID
			m.options[questions[i].Options[j].ID] = questions[i].Options[j]
		}
		stored := questions[i]
		stored.Options = nil
		m.questions[stored.ID] = stored
	}
}

// assembleTest rebuilds a test aggregate with questions and options in
// ascending order. Caller holds the lock.
func (m *MemoryStore) assembleTest(id uint) (models.Test, bool) {
	t, ok := m.tests[id]
	if !ok {
		return models.Test{}, false
	}
	for _, q := range m.questions {
		if q.TestID != id {
			continue
		}
		for _, o := range m.options {
			if o.QuestionID == q.ID {
				q.Options = append(q.Options, o)
			}
		}
		sort.Slice(q.Options, func(i, j int) bool { return q.Options[i].Order < q.Options[j].Order })
		t.Questions = append(t.Questions, q)
	}
	sort.Slice(t.Questions, func(i, j int) bool { return t.Questions[i].Order < t.Questions[j].Order })
	return t, true
}

func (m *MemoryStore) FindTestWithQuestions(testID uint) (*models.Test, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.assembleTest(testID)
	if !ok {
		return nil, ErrTestNotFound
	}
	return &t, nil
}

func (m *MemoryStore) ListTests() ([]models.Test, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var tests []models.Test
	for id := range m.tests {
		t, _ := m.assembleTest(id)
		tests = append(tests, t)
	}
	sortTestsNewestFirst(tests)
	return tests, nil
}

func (m *MemoryStore) ListActiveTestsNotAttempted(userID uint) ([]models.Test, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var tests []models.Test
	for id, t := range m.tests {
		if !t.IsActive {
			continue
		}
		if _, taken := m.attemptKeys[attemptKey{userID: userID, testID: id}]; taken {
			continue
		}
		full, _ := m.assembleTest(id)
		tests = append(tests, full)
	}
	sortTestsNewestFirst(tests)
	return tests, nil
}

func sortTestsNewestFirst(tests []models.Test) {
	sort.Slice(tests, func(i, j int) bool {
		if tests[i].CreatedAt.Equal(tests[j].CreatedAt) {
			return tests[i].ID > tests[j].ID
		}
		return tests[i].CreatedAt.After(tests[j].CreatedAt)
	})
}

func (m *MemoryStore) ReplaceQuestions(testID uint, questions []models.Question) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tests[testID]; !ok {
		return ErrTestNotFound
	}
	m.deleteQuestionsOfTest(testID)
	m.storeQuestions(testID, questions)
	return nil
}

// deleteQuestionsOfTest removes the test's questions and their options.
// Caller holds the lock.
func (m *MemoryStore) deleteQuestionsOfTest(testID uint) {
	for qid, q := range m.questions {
		if q.TestID != testID {
			continue
		}
		for oid, o := range m.options {
			if o.QuestionID == qid {
				delete(m.options, oid)
			}
		}
		delete(m.questions, qid)
	}
}

func (m *MemoryStore) DeleteTestCascade(testID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tests[testID]; !ok {
		return ErrTestNotFound
	}
	for aid, a := range m.attempts {
		if a.TestID != testID {
			continue
		}
		for ansID, ans := range m.answers {
			if ans.AttemptID == aid {
				delete(m.answers, ansID)
			}
		}
		delete(m.attemptKeys, attemptKey{userID: a.UserID, testID: testID})
		delete(m.attempts, aid)
	}
	m.deleteQuestionsOfTest(testID)
	delete(m.tests, testID)
	return nil
}

func (m *MemoryStore) FindAttempt(userID, testID uint) (*models.Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.attemptKeys[attemptKey{userID: userID, testID: testID}]
	if !ok {
		return nil, ErrNotFound
	}
	attempt := m.attempts[id]
	return &attempt, nil
}

func (m *MemoryStore) FindAttemptDetail(attemptID uint) (*models.Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[attemptID]
	if !ok {
		return nil, ErrNotFound
	}
	if u, ok := m.users[a.UserID]; ok {
		a.User = u
	}
	if t, ok := m.assembleTest(a.TestID); ok {
		a.Test = t
	}
	a.Answers = m.answersOf(attemptID)
	return &a, nil
}

func (m *MemoryStore) ListAttempts() ([]models.Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var attempts []models.Attempt
	for _, a := range m.attempts {
		if u, ok := m.users[a.UserID]; ok {
			a.User = u
		}
		if t, ok := m.tests[a.TestID]; ok {
			a.Test = t
		}
		attempts = append(attempts, a)
	}
	sortAttemptsNewestFirst(attempts)
	return attempts, nil
}

func (m *MemoryStore) ListAttemptsForUser(userID uint) ([]models.Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var attempts []models.Attempt
	for _, a := range m.attempts {
		if a.UserID != userID {
			continue
		}
		if t, ok := m.tests[a.TestID]; ok {
			a.Test = t
		}
		attempts = append(attempts, a)
	}
	sortAttemptsNewestFirst(attempts)
	return attempts, nil
}

func sortAttemptsNewestFirst(attempts []models.Attempt) {
	sort.Slice(attempts, func(i, j int) bool {
		if attempts[i].CompletedAt.Equal(attempts[j].CompletedAt) {
			return attempts[i].ID > attempts[j].ID
		}
		return attempts[i].CompletedAt.After(attempts[j].CompletedAt)
	})
}

func (m *MemoryStore) CreateAttemptWithAnswers(attempt *models.Attempt, answers []models.Answer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := attemptKey{userID: attempt.UserID, testID: attempt.TestID}
	if _, exists := m.attemptKeys[key]; exists {
		return ErrDuplicateAttempt
	}
	attempt.ID = m.newID()
	attempt.CreatedAt = time.Now()
	m.attempts[attempt.ID] = *attempt
	m.attemptKeys[key] = attempt.ID
	for i := range answers {
		answers[i].ID = m.newID()
		answers[i].AttemptID = attempt.ID
		m.answers[answers[i].ID] = answers[i]
	}
	return nil
}

// answersOf returns the attempt's answers ordered by id. Caller holds the lock.
func (m *MemoryStore) answersOf(attemptID uint) []models.Answer {
	var answers []models.Answer
	for _, a := range m.answers {
		if a.AttemptID == attemptID {
			answers = append(answers, a)
		}
	}
	sort.Slice(answers, func(i, j int) bool { return answers[i].ID < answers[j].ID })
	return answers
}

func (m *MemoryStore) ListAnswersForAttempt(attemptID uint) ([]models.Answer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.answersOf(attemptID), nil
}

func (m *MemoryStore) UpdateAnswerCorrect(answerID uint, isCorrect bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.answers[answerID]
	if !ok {
		return ErrAnswerNotFound
	}
	v := isCorrect
	a.IsCorrect = &v
	m.answers[answerID] = a
	return nil
}

func (m *MemoryStore) UpdateAttemptScore(attemptID uint, score *int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[attemptID]
	if !ok {
		return ErrNotFound
	}
	a.Score = score
	m.attempts[attemptID] = a
	return nil
}
