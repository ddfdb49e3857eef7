package performance

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"
)

// memStore is an in-memory StoreAPI used by the service tests.
type memStore struct {
	mu         sync.Mutex
	seq        int
	cycles     map[string]Cycle
	categories map[string]MetricCategory
	metrics    map[string]Metric
	exclusions map[string][]ExclusionTarget
	employees  map[string]EmployeeRef
	emails     map[string]string
	scores     map[ScoreKey]Score
}

func newMemStore() *memStore {
	return &memStore{
		cycles:     map[string]Cycle{},
		categories: map[string]MetricCategory{},
		metrics:    map[string]Metric{},
		exclusions: map[string][]ExclusionTarget{},
		employees:  map[string]EmployeeRef{},
		emails:     map[string]string{},
		scores:     map[ScoreKey]Score{},
	}
}

func (m *memStore) nextID(prefix string) string {
	m.seq++
	return prefix + "-" + strconv.Itoa(m.seq)
}

func (m *memStore) addEmployee(id, email, departmentID, positionID string) EmployeeRef {
	ref := EmployeeRef{ID: id, DepartmentID: departmentID, PositionID: positionID, IsActive: true}
	m.employees[id] = ref
	m.emails[email] = id
	return ref
}

func (m *memStore) ExpireCycles(_ context.Context, now time.Time) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for id, cycle := range m.cycles {
		if cycle.Status == CycleStatusActive && cycle.EndDate.Before(now) {
			cycle.Status = CycleStatusClosed
			m.cycles[id] = cycle
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *memStore) ActiveCycle(context.Context) (Cycle, error) {
	for _, cycle := range m.cycles {
		if cycle.IsActive() {
			return cycle, nil
		}
	}
	return Cycle{}, ErrNoActiveCycle
}

func (m *memStore) ListCycles(context.Context) ([]Cycle, error) {
	out := make([]Cycle, 0, len(m.cycles))
	for _, cycle := range m.cycles {
		out = append(out, cycle)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.After(out[j].StartDate) })
	return out, nil
}

func (m *memStore) GetCycle(_ context.Context, cycleID string) (Cycle, error) {
	cycle, ok := m.cycles[cycleID]
	if !ok {
		return Cycle{}, ErrCycleNotFound
	}
	return cycle, nil
}

func (m *memStore) CreateCycle(ctx context.Context, cycle Cycle) (string, error) {
	if cycle.IsActive() {
		if _, err := m.ActiveCycle(ctx); err == nil {
			return "", ErrAnotherCycleActive
		}
	}
	cycle.ID = m.nextID("cycle")
	m.cycles[cycle.ID] = cycle
	return cycle.ID, nil
}

func (m *memStore) UpdateCycle(_ context.Context, cycleID string, cycle Cycle) error {
	existing := m.cycles[cycleID]
	if existing.IsActive() {
		return ErrCycleLocked
	}
	existing.Name, existing.Description = cycle.Name, cycle.Description
	existing.StartDate, existing.EndDate = cycle.StartDate, cycle.EndDate
	m.cycles[cycleID] = existing
	return nil
}

func (m *memStore) SetCycleStatus(ctx context.Context, cycleID, status string) error {
	cycle, ok := m.cycles[cycleID]
	if !ok {
		return ErrCycleNotFound
	}
	if status == CycleStatusActive {
		if active, err := m.ActiveCycle(ctx); err == nil && active.ID != cycleID {
			return ErrAnotherCycleActive
		}
	}
	cycle.Status = status
	m.cycles[cycleID] = cycle
	return nil
}

func (m *memStore) DeleteCycle(_ context.Context, cycleID string) error {
	delete(m.cycles, cycleID)
	for key := range m.scores {
		if key.CycleID == cycleID {
			delete(m.scores, key)
		}
	}
	return nil
}

func (m *memStore) ListCategories(context.Context) ([]MetricCategory, error) {
	out := make([]MetricCategory, 0, len(m.categories))
	for _, category := range m.categories {
		out = append(out, category)
	}
	return out, nil
}

func (m *memStore) GetCategory(_ context.Context, categoryID string) (MetricCategory, error) {
	category, ok := m.categories[categoryID]
	if !ok {
		return MetricCategory{}, ErrCategoryNotFound
	}
	return category, nil
}

func (m *memStore) CreateCategory(_ context.Context, category MetricCategory) (string, error) {
	category.ID = m.nextID("cat")
	m.categories[category.ID] = category
	return category.ID, nil
}

func (m *memStore) UpdateCategory(_ context.Context, categoryID string, category MetricCategory) error {
	if _, ok := m.categories[categoryID]; !ok {
		return ErrCategoryNotFound
	}
	category.ID = categoryID
	m.categories[categoryID] = category
	return nil
}

func (m *memStore) DeleteCategory(_ context.Context, categoryID string) error {
	delete(m.categories, categoryID)
	return nil
}

func (m *memStore) CategoryMetricCount(_ context.Context, categoryID string) (int, error) {
	count := 0
	for _, metric := range m.metrics {
		if metric.CategoryID == categoryID {
			count++
		}
	}
	return count, nil
}

func (m *memStore) ListMetrics(_ context.Context, filter MetricFilter) ([]Metric, error) {
	var out []Metric
	for _, metric := range m.metrics {
		if filter.DepartmentID != "" && !metric.CoversDepartment(filter.DepartmentID) {
			continue
		}
		if filter.CategoryID != "" && metric.CategoryID != filter.CategoryID {
			continue
		}
		if filter.ActiveOnly && !metric.IsActive {
			continue
		}
		out = append(out, metric)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memStore) GetMetric(_ context.Context, metricID string) (Metric, error) {
	metric, ok := m.metrics[metricID]
	if !ok {
		return Metric{}, ErrMetricNotFound
	}
	return metric, nil
}

func (m *memStore) GetMetricByName(_ context.Context, name string) (Metric, error) {
	for _, metric := range m.metrics {
		if metric.Name == name {
			return metric, nil
		}
	}
	return Metric{}, ErrMetricNotFound
}

func (m *memStore) CreateMetric(_ context.Context, metric Metric, targets []ExclusionTarget) (string, error) {
	metric.ID = m.nextID("metric")
	m.metrics[metric.ID] = metric
	m.exclusions[metric.ID] = append([]ExclusionTarget(nil), targets...)
	return metric.ID, nil
}

func (m *memStore) UpdateMetric(_ context.Context, metricID string, metric Metric, targets []ExclusionTarget) error {
	if _, ok := m.metrics[metricID]; !ok {
		return ErrMetricNotFound
	}
	metric.ID = metricID
	m.metrics[metricID] = metric
	m.exclusions[metricID] = append([]ExclusionTarget(nil), targets...)
	return nil
}

func (m *memStore) DeleteMetric(_ context.Context, metricID string) error {
	delete(m.metrics, metricID)
	delete(m.exclusions, metricID)
	return nil
}

func (m *memStore) MetricScoreCount(_ context.Context, metricID string) (int, error) {
	count := 0
	for key := range m.scores {
		if key.MetricID == metricID {
			count++
		}
	}
	return count, nil
}

func (m *memStore) ReplaceExclusions(_ context.Context, metricID string, targets []ExclusionTarget) error {
	m.exclusions[metricID] = append([]ExclusionTarget(nil), targets...)
	return nil
}

func (m *memStore) ListExclusions(_ context.Context, metricID string) ([]Exclusion, error) {
	var out []Exclusion
	for i, target := range m.exclusions[metricID] {
		out = append(out, Exclusion{ID: metricID + "/" + strconv.Itoa(i), MetricID: metricID, Target: target})
	}
	return out, nil
}

func (m *memStore) ExclusionsFor(_ context.Context, employeeID, positionID string) ([]Exclusion, error) {
	var out []Exclusion
	for metricID, targets := range m.exclusions {
		for _, target := range targets {
			if (target.Kind() == TargetEmployee && target.ID() == employeeID) ||
				(target.Kind() == TargetPosition && target.ID() == positionID) {
				out = append(out, Exclusion{MetricID: metricID, Target: target})
			}
		}
	}
	return out, nil
}

func (m *memStore) EmployeeRef(_ context.Context, employeeID string) (EmployeeRef, error) {
	ref, ok := m.employees[employeeID]
	if !ok {
		return EmployeeRef{}, ErrEmployeeNotFound
	}
	return ref, nil
}

func (m *memStore) EmployeeIDByEmail(_ context.Context, email string) (string, error) {
	id, ok := m.emails[email]
	if !ok {
		return "", ErrEmployeeNotFound
	}
	return id, nil
}

func (m *memStore) UpsertScore(_ context.Context, in ScoreUpsert) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.scores[in.ScoreKey]; ok {
		existing.Score = in.Score
		existing.Comment = in.Comment
		m.scores[in.ScoreKey] = existing
		return existing.ID, nil
	}
	score := Score{
		ID:          m.nextID("score"),
		EmployeeID:  in.EmployeeID,
		MetricID:    in.MetricID,
		CycleID:     in.CycleID,
		EvaluatorID: in.EvaluatorID,
		Score:       in.Score,
		Comment:     in.Comment,
	}
	m.scores[in.ScoreKey] = score
	return score.ID, nil
}

func (m *memStore) ListScores(_ context.Context, filter ScoreFilter) ([]Score, error) {
	var out []Score
	for _, score := range m.scores {
		if filter.CycleID != "" && score.CycleID != filter.CycleID {
			continue
		}
		if filter.EmployeeID != "" && score.EmployeeID != filter.EmployeeID {
			continue
		}
		if filter.EvaluatorID != "" && score.EvaluatorID != filter.EvaluatorID {
			continue
		}
		out = append(out, score)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type publishedEvent struct {
	eventType string
	entityID  string
}

type recordingPublisher struct {
	events []publishedEvent
}

func (p *recordingPublisher) Publish(_ context.Context, eventType, entityID string, _ any) {
	p.events = append(p.events, publishedEvent{eventType: eventType, entityID: entityID})
}

func (p *recordingPublisher) count(eventType string) int {
	n := 0
	for _, evt := range p.events {
		if evt.eventType == eventType {
			n++
		}
	}
	return n
}

type recordingAuditor struct {
	actions []string
}

func (a *recordingAuditor) Record(_ context.Context, action, entityType, _ string, _, _ any) error {
	a.actions = append(a.actions, action+":"+entityType)
	return nil
}

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store     *memStore
	publisher *recordingPublisher
	auditor   *recordingAuditor
	svc       *Service
}

func newFixture() *fixture {
	store := newMemStore()
	publisher := &recordingPublisher{}
	auditor := &recordingAuditor{}
	svc := NewService(store, publisher, auditor)
	svc.now = func() time.Time { return testNow }
	return &fixture{store: store, publisher: publisher, auditor: auditor, svc: svc}
}

func (f *fixture) addCycle(name, status string, start, end time.Time) Cycle {
	cycle := Cycle{ID: f.store.nextID("cycle"), Name: name, StartDate: start, EndDate: end, Status: status}
	f.store.cycles[cycle.ID] = cycle
	return cycle
}

func (f *fixture) activeCycle() Cycle {
	return f.addCycle("Q1", CycleStatusActive, testNow.AddDate(0, -1, 0), testNow.AddDate(0, 1, 0))
}

func (f *fixture) addMetric(name, departmentID string, maxScore float64) Metric {
	metric := Metric{
		ID:           f.store.nextID("metric"),
		Name:         name,
		CategoryID:   "cat-quality",
		MaxScore:     maxScore,
		ScaleType:    DefaultScaleType,
		Weight:       DefaultMetricWeight,
		DepartmentID: departmentID,
		IsActive:     true,
	}
	f.store.metrics[metric.ID] = metric
	return metric
}
