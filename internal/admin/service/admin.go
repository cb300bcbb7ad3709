package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"slices"
	"time"

	slotsrepository "vaxbook/internal/slots/repository"
	usersrepository "vaxbook/internal/users/repository"
	"vaxbook/pkg/config"
	apperrors "vaxbook/pkg/errors"
	httputil "vaxbook/pkg/http"
	"vaxbook/pkg/model"
	"vaxbook/pkg/validation"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"
)

type AdminService interface {
	Login(ctx context.Context, login *model.AdminLogin) error
	CountUsers(ctx context.Context, filter model.UserFilter) (int64, error)
	SlotsByDate(ctx context.Context, date time.Time) (*model.SlotsByDate, error)
}

type adminService struct {
	users    usersrepository.UserRepository
	slots    slotsrepository.SlotRepository
	validate *validator.Validate
	cfg      *config.Config
}

func NewAdminService(users usersrepository.UserRepository, slots slotsrepository.SlotRepository, cfg *config.Config) AdminService {
	return &adminService{
		users:    users,
		slots:    slots,
		validate: validation.New(),
		cfg:      cfg,
	}
}

// Login checks the configured administrator credentials. It keeps no session;
// admin endpoints stay open once the service is reachable.
func (s *adminService) Login(ctx context.Context, login *model.AdminLogin) error {
	if err := validation.Struct(s.validate, login); err != nil {
		return validation.ToAppError("Invalid admin login request", err)
	}

	userOK := subtle.ConstantTimeCompare([]byte(login.Username), []byte(s.cfg.AdminUsername)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(login.Password), []byte(s.cfg.AdminPassword)) == 1
	if !userOK || !passOK {
		s.cfg.Log.Warn("Rejected admin login", "username", login.Username)
		return apperrors.Unauthorized("Invalid admin credentials")
	}

	s.cfg.Log.Info("Admin logged in", "username", login.Username)
	return nil
}

func (s *adminService) CountUsers(ctx context.Context, filter model.UserFilter) (int64, error) {
	if filter.VaccinationStatus != "" && !filter.VaccinationStatus.Valid() {
		return 0, apperrors.InvalidInput(fmt.Sprintf("invalid vaccination_status: %s", filter.VaccinationStatus))
	}
	if filter.Age != nil && (*filter.Age < 0 || *filter.Age > 150) {
		return 0, apperrors.InvalidInput(fmt.Sprintf("invalid age: %d", *filter.Age))
	}

	count, err := s.users.Count(ctx, filter)
	if err != nil {
		s.cfg.Log.Error("Failed to count users", "error", err)
		return 0, apperrors.Internal("Failed to count users", err)
	}
	return count, nil
}

// SlotsByDate lists the slots of one day grouped by dose, each with its
// registered users resolved to summaries.
func (s *adminService) SlotsByDate(ctx context.Context, date time.Time) (*model.SlotsByDate, error) {
	start, end := config.DayBounds(date, s.cfg.Location)
	first, second := model.DoseFirst, model.DoseSecond

	var firstSlots, secondSlots, allSlots []*model.Slot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		firstSlots, err = s.slots.FindByDateRange(gctx, start, end, &first)
		return err
	})
	g.Go(func() error {
		var err error
		secondSlots, err = s.slots.FindByDateRange(gctx, start, end, &second)
		return err
	})
	g.Go(func() error {
		var err error
		allSlots, err = s.slots.FindByDateRange(gctx, start, end, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		s.cfg.Log.Error("Failed to load slots by date", "date", start.Format(httputil.DateLayout), "error", err)
		return nil, apperrors.Internal("Failed to retrieve slots", err)
	}

	var ids []string
	for _, slot := range allSlots {
		for _, id := range slot.RegisteredUsers {
			if !slices.Contains(ids, id) {
				ids = append(ids, id)
			}
		}
	}

	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		s.cfg.Log.Error("Failed to load registered users", "date", start.Format(httputil.DateLayout), "error", err)
		return nil, apperrors.Internal("Failed to retrieve registered users", err)
	}
	byID := make(map[string]*model.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	return &model.SlotsByDate{
		Date:       start.Format(httputil.DateLayout),
		FirstDose:  withUsers(firstSlots, byID),
		SecondDose: withUsers(secondSlots, byID),
		Total:      withUsers(allSlots, byID),
	}, nil
}

// withUsers resolves registrants in list order. Ids with no stored user are
// dropped.
func withUsers(slots []*model.Slot, users map[string]*model.User) []model.SlotDetails {
	details := make([]model.SlotDetails, 0, len(slots))
	for _, slot := range slots {
		summaries := make([]model.UserSummary, 0, len(slot.RegisteredUsers))
		for _, id := range slot.RegisteredUsers {
			if u, ok := users[id]; ok {
				summaries = append(summaries, u.Summary())
			}
		}
		details = append(details, model.SlotDetails{Slot: *slot, Users: summaries})
	}
	return details
}
