package seed

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/drfdemo/userapi/internal/users"
)

// SampleUser is one entry of the built-in sample data
type SampleUser struct {
	Name string
	Age  int
}

// SampleUsers is the fixed sample data set, used in order
var SampleUsers = []SampleUser{
	{Name: "Alice Johnson", Age: 28},
	{Name: "Bob Smith", Age: 35},
	{Name: "Charlie Brown", Age: 22},
	{Name: "Diana Prince", Age: 30},
	{Name: "Edward Wilson", Age: 45},
	{Name: "Fiona Davis", Age: 26},
	{Name: "George Miller", Age: 33},
	{Name: "Hannah Taylor", Age: 29},
	{Name: "Ian Anderson", Age: 41},
	{Name: "Julia Roberts", Age: 37},
}

// DefaultCount is how many users are seeded when no count is given
const DefaultCount = 5

// Options controls a seeding run
type Options struct {
	Count int
	Clear bool
}

// Result summarizes a seeding run
type Result struct {
	Deleted int
	Created int
	Skipped []string
	Total   int
}

// Seeder populates a user store with sample data
type Seeder struct {
	store   users.UserStore
	service users.UserService
	logger  *zap.Logger
}

// NewSeeder creates a seeder. Writes go through the user service so sample
// data is validated like any API request.
func NewSeeder(store users.UserStore, logger *zap.Logger) *Seeder {
	return &Seeder{
		store:   store,
		service: users.NewUserService(store),
		logger:  logger,
	}
}

// Plan returns the users a run with the given count would try to create
func Plan(count int) []SampleUser {
	if count <= 0 {
		return nil
	}
	planned := make([]SampleUser, 0, count)
	for i := 0; i < count && i < len(SampleUsers); i++ {
		planned = append(planned, SampleUsers[i])
	}
	for i := len(SampleUsers); i < count; i++ {
		planned = append(planned, SampleUser{
			Name: fmt.Sprintf("Sample User %d", i+1),
			Age:  20 + i%30,
		})
	}
	return planned
}

// Run seeds the store. Users whose name already exists are skipped.
func (s *Seeder) Run(ctx context.Context, opts Options) (*Result, error) {
	result := &Result{}

	if opts.Clear {
		deleted, err := s.clear(ctx)
		if err != nil {
			return nil, err
		}
		result.Deleted = deleted
		s.logger.Warn("Deleted existing users", zap.Int("count", deleted))
	}

	existing, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list existing users: %w", err)
	}
	names := make(map[string]bool, len(existing))
	for _, u := range existing {
		names[u.Name] = true
	}

	for _, sample := range Plan(opts.Count) {
		if names[sample.Name] {
			result.Skipped = append(result.Skipped, sample.Name)
			s.logger.Warn("User already exists, skipping", zap.String("name", sample.Name))
			continue
		}

		user, err := s.service.CreateUser(ctx, map[string]any{
			users.FieldName: sample.Name,
			users.FieldAge:  sample.Age,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create sample user %q: %w", sample.Name, err)
		}
		names[user.Name] = true
		result.Created++
		s.logger.Info("Created user",
			zap.Int64("user_id", user.ID),
			zap.String("name", user.Name),
			zap.Int("age", user.Age))
	}

	total, err := s.store.CountUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	result.Total = total
	return result, nil
}

func (s *Seeder) clear(ctx context.Context) (int, error) {
	existing, err := s.store.ListUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list users to clear: %w", err)
	}
	for _, u := range existing {
		if err := s.store.DeleteUser(ctx, u.ID); err != nil && !users.IsNotFound(err) {
			return 0, fmt.Errorf("failed to delete user %d: %w", u.ID, err)
		}
	}
	return len(existing), nil
}
