package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	service "github.com/okian/mercwork/internal/app"
	"github.com/okian/mercwork/internal/adapters/repository/sqlite"
	"github.com/okian/mercwork/internal/domain/model"
	"github.com/okian/mercwork/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// scriptedSource replays a fixed list of draws. Once exhausted every draw
// is 0.99, a failure at any chance.
type scriptedSource struct {
	mu    sync.Mutex
	draws []float64
}

func (s *scriptedSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.draws) == 0 {
		return 0.99
	}
	d := s.draws[0]
	s.draws = s.draws[1:]
	return d
}

func (s *scriptedSource) IntN(int) int { return 0 }

func (s *scriptedSource) push(draws ...float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draws = append(s.draws, draws...)
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fixture struct {
	ctx    context.Context
	store  *sqlite.Store
	coord  *service.Coordinator
	src    *scriptedSource
	clock  *fakeClock
	owner  string
	roster map[string]*model.Participant
}

var epoch = time.Date(2031, 4, 2, 12, 0, 0, 0, time.UTC)

func newFixture(t *testing.T, opts ...service.CoordinatorOption) *fixture {
	t.Helper()
	ctx := context.Background()
	store, err := sqlite.Open(ctx, sqlite.MemoryPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	f := &fixture{
		ctx:    ctx,
		store:  store,
		src:    &scriptedSource{},
		clock:  &fakeClock{t: epoch},
		owner:  "req-1",
		roster: make(map[string]*model.Participant),
	}
	all := append([]service.CoordinatorOption{
		service.WithSource(f.src),
		service.WithClock(f.clock.Now),
	}, opts...)
	f.coord, err = service.NewCoordinator(store, all...)
	if err != nil {
		t.Fatalf("new coordinator: %v", err)
	}

	programs := []model.Program{
		{ID: "boost2", Name: "Overclock", Category: "software", Effects: []model.Effect{model.SkillBonus{Skill: model.SkillHacking, Amount: 2}}},
		{ID: "boost3", Name: "Overclock+", Category: "software", Effects: []model.Effect{model.SkillBonus{Skill: model.SkillHacking, Amount: 3}}},
		{ID: "scanner", Name: "Recon Drone", Category: "hardware", Effects: []model.Effect{model.RevealOne{}, model.SkillBonus{Skill: model.SkillHacking, Amount: 4}}},
		{ID: "ghost", Name: "Ghost Protocol", Category: "software", Effects: []model.Effect{model.GuaranteedSuccess{}}},
		{ID: "stim", Name: "Combat Stim", Category: "chem", Effects: []model.Effect{model.AllSkillsBonus{Amount: 1}, model.DifficultyReduction{Amount: 2}}},
	}
	if err := f.coord.SeedPrograms(ctx, programs); err != nil {
		t.Fatalf("seed programs: %v", err)
	}

	for _, p := range []*model.Participant{
		{ID: "ace", OwnerID: f.owner, Name: "Ace", Combat: 8, Hacking: 3, Stealth: 5, Commission: 25},
		{ID: "byte", OwnerID: f.owner, Name: "Byte", Combat: 2, Hacking: 9, Stealth: 4, Commission: 50},
		{ID: "cipher", OwnerID: f.owner, Name: "Cipher", Combat: 4, Hacking: 5, Stealth: 9, Commission: 10},
		{ID: "drift", OwnerID: "req-2", Name: "Drift", Combat: 6, Hacking: 6, Stealth: 6, Commission: 20},
	} {
		created, err := f.coord.CreateParticipant(ctx, p)
		if err != nil {
			t.Fatalf("create participant %s: %v", p.ID, err)
		}
		f.roster[p.ID] = created
	}
	return f
}

func (f *fixture) job(t *testing.T, spec service.NewJob) *model.Job {
	t.Helper()
	if spec.Duration == 0 {
		spec.Duration = 2 * time.Hour
	}
	job, err := f.coord.CreateJob(f.ctx, spec)
	if err != nil {
		t.Fatalf("create job: %v", err)
	}
	return job
}

func (f *fixture) participant(t *testing.T, id string) *model.Participant {
	t.Helper()
	list, err := f.coord.Participants(f.ctx, f.owner)
	if err != nil {
		t.Fatalf("list participants: %v", err)
	}
	for _, p := range list {
		if p.ID == id {
			return p
		}
	}
	return nil
}
