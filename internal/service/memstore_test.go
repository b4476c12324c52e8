package service

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/Freeeeeet/volleyball_school/internal/clock"
	"github.com/Freeeeeet/volleyball_school/internal/model"
	"github.com/shopspring/decimal"
)

// memStore хранилище в памяти с откатом транзакции при ошибке
type memStore struct {
	mu sync.Mutex

	seq        int64
	timetables map[int64]model.Timetable
	trainings  map[int64]model.Training
	subs       map[int64]model.Subscription
	links      map[int64][]int64 // subscription -> trainings
	plans      map[int64]model.SubscriptionPlan
	users      map[int64]model.User
	courts     map[int64]model.Court

	// failCreateOn ломает вставку тренировки на эту дату
	failCreateOn time.Time
}

func newMemStore() *memStore {
	return &memStore{
		timetables: map[int64]model.Timetable{},
		trainings:  map[int64]model.Training{},
		subs:       map[int64]model.Subscription{},
		links:      map[int64][]int64{},
		plans:      map[int64]model.SubscriptionPlan{},
		users:      map[int64]model.User{},
		courts:     map[int64]model.Court{},
	}
}

type memSnapshot struct {
	seq        int64
	timetables map[int64]model.Timetable
	trainings  map[int64]model.Training
	subs       map[int64]model.Subscription
	links      map[int64][]int64
	plans      map[int64]model.SubscriptionPlan
	users      map[int64]model.User
	courts     map[int64]model.Court
}

func (m *memStore) snapshot() memSnapshot {
	trainings := make(map[int64]model.Training, len(m.trainings))
	for id, t := range m.trainings {
		trainings[id] = cloneTraining(t)
	}
	links := make(map[int64][]int64, len(m.links))
	for id, l := range m.links {
		links[id] = slices.Clone(l)
	}
	return memSnapshot{
		seq:        m.seq,
		timetables: maps.Clone(m.timetables),
		trainings:  trainings,
		subs:       maps.Clone(m.subs),
		links:      links,
		plans:      maps.Clone(m.plans),
		users:      maps.Clone(m.users),
		courts:     maps.Clone(m.courts),
	}
}

func (m *memStore) restore(s memSnapshot) {
	m.seq = s.seq
	m.timetables = s.timetables
	m.trainings = s.trainings
	m.subs = s.subs
	m.links = s.links
	m.plans = s.plans
	m.users = s.users
	m.courts = s.courts
}

func (m *memStore) Do(ctx context.Context, fn func(ctx context.Context, r Repos) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.snapshot()
	err := fn(ctx, Repos{
		Timetables:    memTimetables{m},
		Trainings:     memTrainings{m},
		Subscriptions: memSubscriptions{m},
		Plans:         memPlans{m},
		Users:         memUsers{m},
		Courts:        memCourts{m},
	})
	if err != nil {
		m.restore(snap)
	}
	return err
}

func (m *memStore) nextID() int64 {
	m.seq++
	return m.seq
}

func cloneTraining(t model.Training) model.Training {
	t.Learners = slices.Clone(t.Learners)
	if t.CoachID != nil {
		id := *t.CoachID
		t.CoachID = &id
	}
	return t
}

func cloneSubscription(s model.Subscription) model.Subscription {
	if s.StartDate != nil {
		v := *s.StartDate
		s.StartDate = &v
	}
	if s.EndDate != nil {
		v := *s.EndDate
		s.EndDate = &v
	}
	s.Trainings = nil
	return s
}

// Прямой доступ для подготовки и проверки тестов, вне транзакции

func (m *memStore) addCourt(name string) *model.Court {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := model.Court{ID: m.nextID(), Name: name, IsActive: true}
	m.courts[c.ID] = c
	return &c
}

func (m *memStore) addUser(balance int64) *model.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID()
	u := model.User{ID: id, TelegramID: 1000 + id, Balance: decimal.NewFromInt(balance)}
	m.users[u.ID] = u
	return &u
}

func (m *memStore) addPlan(amount int64, qty, validity int) *model.SubscriptionPlan {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := model.SubscriptionPlan{
		ID:           m.nextID(),
		Name:         fmt.Sprintf("%d занятий", qty),
		Amount:       decimal.NewFromInt(amount),
		SessionsQty:  qty,
		ValidityDays: validity,
		IsActive:     true,
	}
	m.plans[p.ID] = p
	return &p
}

func (m *memStore) addTraining(t model.Training) *model.Training {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.ID = m.nextID()
	if t.Status == "" {
		t.Status = model.TrainingStatusDefault
	}
	m.trainings[t.ID] = cloneTraining(t)
	return &t
}

func (m *memStore) addSubscription(s model.Subscription, trainingIDs ...int64) *model.Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.ID = m.nextID()
	m.subs[s.ID] = cloneSubscription(s)
	m.links[s.ID] = slices.Clone(trainingIDs)
	return &s
}

func (m *memStore) training(id int64) model.Training {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneTraining(m.trainings[id])
}

func (m *memStore) user(id int64) model.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[id]
}

func (m *memStore) subscription(id int64) model.Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := cloneSubscription(m.subs[id])
	s.Trainings = m.linkedTrainings(id)
	return s
}

func (m *memStore) trainingDates(key model.SlotKey) []time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	var dates []time.Time
	for _, t := range m.sortedTrainings() {
		if t.Key() == key {
			dates = append(dates, t.Date)
		}
	}
	return dates
}

func (m *memStore) sortedTrainings() []model.Training {
	list := make([]model.Training, 0, len(m.trainings))
	for _, t := range m.trainings {
		list = append(list, cloneTraining(t))
	}
	sort.Slice(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.StartHour*60+a.StartMinute != b.StartHour*60+b.StartMinute {
			return a.StartHour*60+a.StartMinute < b.StartHour*60+b.StartMinute
		}
		return a.ID < b.ID
	})
	return list
}

func (m *memStore) linkedTrainings(subID int64) []model.LinkedTraining {
	var linked []model.LinkedTraining
	for _, id := range m.links[subID] {
		t, ok := m.trainings[id]
		if !ok {
			continue
		}
		linked = append(linked, model.LinkedTraining{
			TrainingID:  t.ID,
			Date:        t.Date,
			StartHour:   t.StartHour,
			StartMinute: t.StartMinute,
		})
	}
	return linked
}

type memTimetables struct{ m *memStore }

func (r memTimetables) Create(_ context.Context, t *model.Timetable) error {
	t.ID = r.m.nextID()
	r.m.timetables[t.ID] = *t
	return nil
}

func (r memTimetables) GetByID(_ context.Context, id int64) (*model.Timetable, error) {
	t, ok := r.m.timetables[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (r memTimetables) GetByIDForUpdate(ctx context.Context, id int64) (*model.Timetable, error) {
	return r.GetByID(ctx, id)
}

func (r memTimetables) GetAllActive(_ context.Context) ([]*model.Timetable, error) {
	ids := slices.Sorted(maps.Keys(r.m.timetables))
	var list []*model.Timetable
	for _, id := range ids {
		t := r.m.timetables[id]
		if t.IsActive {
			list = append(list, &t)
		}
	}
	return list, nil
}

func (r memTimetables) Update(_ context.Context, t *model.Timetable) error {
	if _, ok := r.m.timetables[t.ID]; !ok {
		return fmt.Errorf("update timetable: no rows")
	}
	r.m.timetables[t.ID] = *t
	return nil
}

func (r memTimetables) Delete(_ context.Context, id int64) error {
	delete(r.m.timetables, id)
	return nil
}

type memTrainings struct{ m *memStore }

func (r memTrainings) CreateIfAbsent(_ context.Context, t *model.Training) (bool, error) {
	if !r.m.failCreateOn.IsZero() && t.Date.Equal(r.m.failCreateOn) {
		return false, fmt.Errorf("create training: connection reset")
	}
	if t.DayOfWeek != clock.ISOWeekday(t.Date) {
		return false, fmt.Errorf("create training: weekday check violated")
	}
	for _, existing := range r.m.trainings {
		if existing.SkillLevel == t.SkillLevel && existing.CourtID == t.CourtID && existing.Date.Equal(t.Date) {
			return false, nil
		}
	}
	t.ID = r.m.nextID()
	r.m.trainings[t.ID] = cloneTraining(*t)
	return true, nil
}

func (r memTrainings) GetByID(_ context.Context, id int64) (*model.Training, error) {
	t, ok := r.m.trainings[id]
	if !ok {
		return nil, nil
	}
	t = cloneTraining(t)
	return &t, nil
}

func (r memTrainings) GetByIDForUpdate(ctx context.Context, id int64) (*model.Training, error) {
	return r.GetByID(ctx, id)
}

func (r memTrainings) filter(keep func(t model.Training) bool) []*model.Training {
	var list []*model.Training
	for _, t := range r.m.sortedTrainings() {
		if keep(t) {
			t := t
			list = append(list, &t)
		}
	}
	return list
}

func (r memTrainings) GetBySlotFrom(_ context.Context, key model.SlotKey, from time.Time) ([]*model.Training, error) {
	return r.filter(func(t model.Training) bool {
		return t.Key() == key && !t.Date.Before(from)
	}), nil
}

func (r memTrainings) GetInRange(_ context.Context, level model.SkillLevel, from, to time.Time) ([]*model.Training, error) {
	list := r.filter(func(t model.Training) bool {
		return t.SkillLevel == level && t.IsActive && !t.Date.Before(from) && t.Date.Before(to)
	})
	sort.SliceStable(list, func(i, j int) bool { return list[i].CourtID < list[j].CourtID })
	return list, nil
}

func (r memTrainings) GetByLearner(_ context.Context, userID int64, from time.Time) ([]*model.Training, error) {
	return r.filter(func(t model.Training) bool {
		return t.HasLearner(userID) && !t.Date.Before(from)
	}), nil
}

func (r memTrainings) Update(_ context.Context, t *model.Training) error {
	stored, ok := r.m.trainings[t.ID]
	if !ok {
		return fmt.Errorf("update training: no rows")
	}
	stored.CoachID = t.CoachID
	stored.StartHour = t.StartHour
	stored.StartMinute = t.StartMinute
	stored.Status = t.Status
	stored.IsActive = t.IsActive
	r.m.trainings[t.ID] = cloneTraining(stored)
	return nil
}

func (r memTrainings) Delete(_ context.Context, id int64) error {
	delete(r.m.trainings, id)
	for subID, ids := range r.m.links {
		r.m.links[subID] = slices.DeleteFunc(ids, func(v int64) bool { return v == id })
	}
	return nil
}

func (r memTrainings) AddLearner(_ context.Context, trainingID, userID int64) error {
	t, ok := r.m.trainings[trainingID]
	if !ok {
		return fmt.Errorf("add learner: foreign key violated")
	}
	if !t.HasLearner(userID) {
		t.Learners = append(slices.Clone(t.Learners), userID)
		slices.Sort(t.Learners)
	}
	r.m.trainings[trainingID] = t
	return nil
}

func (r memTrainings) RemoveLearner(_ context.Context, trainingID, userID int64) error {
	t, ok := r.m.trainings[trainingID]
	if !ok {
		return nil
	}
	t.Learners = slices.DeleteFunc(slices.Clone(t.Learners), func(id int64) bool { return id == userID })
	r.m.trainings[trainingID] = t
	return nil
}

type memSubscriptions struct{ m *memStore }

func (r memSubscriptions) Create(_ context.Context, s *model.Subscription) error {
	s.ID = r.m.nextID()
	r.m.subs[s.ID] = cloneSubscription(*s)
	return nil
}

func (r memSubscriptions) load(id int64) *model.Subscription {
	s := cloneSubscription(r.m.subs[id])
	s.Trainings = r.m.linkedTrainings(id)
	return &s
}

func (r memSubscriptions) GetByUserIDForUpdate(_ context.Context, userID int64) ([]*model.Subscription, error) {
	var list []*model.Subscription
	for _, id := range slices.Sorted(maps.Keys(r.m.subs)) {
		if r.m.subs[id].UserID == userID {
			list = append(list, r.load(id))
		}
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].PurchaseDate.Before(list[j].PurchaseDate) })
	return list, nil
}

func (r memSubscriptions) GetByUserAndTraining(ctx context.Context, userID, trainingID int64) (*model.Subscription, error) {
	subs, _ := r.GetByUserIDForUpdate(ctx, userID)
	for _, s := range subs {
		if slices.Contains(r.m.links[s.ID], trainingID) {
			return s, nil
		}
	}
	return nil, nil
}

func (r memSubscriptions) GetUserIDsByTraining(_ context.Context, trainingID int64) ([]int64, error) {
	var ids []int64
	for subID, linked := range r.m.links {
		if slices.Contains(linked, trainingID) {
			ids = append(ids, r.m.subs[subID].UserID)
		}
	}
	slices.Sort(ids)
	return slices.Compact(ids), nil
}

func (r memSubscriptions) UpdateLifecycle(_ context.Context, s *model.Subscription) error {
	stored, ok := r.m.subs[s.ID]
	if !ok {
		return fmt.Errorf("update subscription: no rows")
	}
	upd := cloneSubscription(*s)
	stored.StartDate, stored.EndDate, stored.IsActive = upd.StartDate, upd.EndDate, upd.IsActive
	r.m.subs[s.ID] = stored
	return nil
}

func (r memSubscriptions) LinkTraining(_ context.Context, subscriptionID, trainingID int64) error {
	if !slices.Contains(r.m.links[subscriptionID], trainingID) {
		r.m.links[subscriptionID] = append(slices.Clone(r.m.links[subscriptionID]), trainingID)
	}
	return nil
}

func (r memSubscriptions) UnlinkTraining(_ context.Context, subscriptionID, trainingID int64) error {
	r.m.links[subscriptionID] = slices.DeleteFunc(slices.Clone(r.m.links[subscriptionID]), func(id int64) bool { return id == trainingID })
	return nil
}

type memPlans struct{ m *memStore }

func (r memPlans) GetByID(_ context.Context, id int64) (*model.SubscriptionPlan, error) {
	p, ok := r.m.plans[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r memPlans) GetActive(_ context.Context) ([]*model.SubscriptionPlan, error) {
	var list []*model.SubscriptionPlan
	for _, id := range slices.Sorted(maps.Keys(r.m.plans)) {
		p := r.m.plans[id]
		if p.IsActive {
			list = append(list, &p)
		}
	}
	return list, nil
}

type memUsers struct{ m *memStore }

func (r memUsers) Create(_ context.Context, user *model.User) error {
	user.ID = r.m.nextID()
	r.m.users[user.ID] = *user
	return nil
}

func (r memUsers) GetByID(_ context.Context, id int64) (*model.User, error) {
	u, ok := r.m.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r memUsers) GetByIDForUpdate(ctx context.Context, id int64) (*model.User, error) {
	return r.GetByID(ctx, id)
}

func (r memUsers) GetByTelegramID(_ context.Context, telegramID int64) (*model.User, error) {
	for _, u := range r.m.users {
		if u.TelegramID == telegramID {
			return &u, nil
		}
	}
	return nil, nil
}

func (r memUsers) UpdateProfile(_ context.Context, user *model.User) error {
	stored := r.m.users[user.ID]
	stored.Username, stored.FirstName, stored.LastName, stored.LanguageCode = user.Username, user.FirstName, user.LastName, user.LanguageCode
	r.m.users[user.ID] = stored
	return nil
}

func (r memUsers) UpdateBalance(_ context.Context, userID int64, balance decimal.Decimal) error {
	if balance.IsNegative() {
		return fmt.Errorf("update user balance: balance check violated")
	}
	stored := r.m.users[userID]
	stored.Balance = balance
	r.m.users[userID] = stored
	return nil
}

type memCourts struct{ m *memStore }

func (r memCourts) GetAll(_ context.Context) ([]*model.Court, error) {
	var list []*model.Court
	for _, id := range slices.Sorted(maps.Keys(r.m.courts)) {
		c := r.m.courts[id]
		list = append(list, &c)
	}
	return list, nil
}
