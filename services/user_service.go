package services

import (
	"context"
	"strings"

	"github.com/aliasrafbd/hostel-management-server/apperror"
	"github.com/aliasrafbd/hostel-management-server/models"
	"github.com/aliasrafbd/hostel-management-server/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserService struct {
	db     *gorm.DB
	mailer Notifier
}

func NewUserService(db *gorm.DB, mailer Notifier) *UserService {
	return &UserService{db: db, mailer: mailer}
}

type UserInput struct {
	Name  string `json:"name"`
	Email string `json:"email" binding:"required,email"`
	Image string `json:"image"`
}

// Register inserts the user unless the email is taken. created is false
// when a user with that email already exists.
func (s *UserService) Register(ctx context.Context, in UserInput) (user *models.User, created bool, err error) {
	u := models.User{Name: in.Name, Email: strings.TrimSpace(in.Email), Image: in.Image}
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "email"}}, DoNothing: true}).
		Create(&u)
	if res.Error != nil {
		return nil, false, wrapStore(res.Error, "register %s", in.Email)
	}
	return &u, res.RowsAffected > 0, nil
}

func (s *UserService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, wrapStore(notFoundAs(err, "User not found"), "find user %s", email)
	}
	return &u, nil
}

// List filters by name and email substrings.
func (s *UserService) List(ctx context.Context, name, email string) ([]models.User, error) {
	q := s.db.WithContext(ctx)
	if name != "" {
		q = q.Where(`LOWER(name) LIKE ? ESCAPE '\'`, containsPattern(name))
	}
	if email != "" {
		q = q.Where(`LOWER(email) LIKE ? ESCAPE '\'`, containsPattern(email))
	}
	users := []models.User{}
	if err := q.Order("id ASC").Find(&users).Error; err != nil {
		return nil, wrapStore(err, "list users")
	}
	return users, nil
}

func (s *UserService) Delete(ctx context.Context, id uint) (int64, error) {
	res := s.db.WithContext(ctx).Delete(&models.User{}, id)
	if res.Error != nil {
		return 0, wrapStore(res.Error, "delete user %d", id)
	}
	return res.RowsAffected, nil
}

// MakeAdmin grants the admin role.
func (s *UserService) MakeAdmin(ctx context.Context, id uint) (UpdateResult, error) {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("role", models.RoleAdmin)
	if res.Error != nil {
		return UpdateResult{}, wrapStore(res.Error, "promote user %d", id)
	}
	return UpdateResult{MatchedCount: res.RowsAffected, ModifiedCount: res.RowsAffected}, nil
}

// IsAdmin is false for unknown emails.
func (s *UserService) IsAdmin(ctx context.Context, email string) (bool, error) {
	u, err := s.FindByEmail(ctx, email)
	if apperror.IsKind(err, apperror.KindNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return u.IsAdmin(), nil
}

// IsPremium is false for unknown emails.
func (s *UserService) IsPremium(ctx context.Context, email string) (bool, error) {
	u, err := s.FindByEmail(ctx, email)
	if apperror.IsKind(err, apperror.KindNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return u.IsPremium(), nil
}

var packageBadges = map[string]string{
	"silver":   models.BadgeSilver,
	"gold":     models.BadgeGold,
	"platinum": models.BadgePlatinum,
}

// BadgeForPackage maps a package name to its badge, case-insensitively.
func BadgeForPackage(pkg string) (string, bool) {
	b, ok := packageBadges[strings.ToLower(strings.TrimSpace(pkg))]
	return b, ok
}

// UpdateBadge sets the badge bought with pkg and sends a confirmation.
func (s *UserService) UpdateBadge(ctx context.Context, email, pkg string) (string, error) {
	if email == "" || pkg == "" {
		return "", apperror.Validation("userEmail and packageName are required")
	}
	badge, ok := BadgeForPackage(pkg)
	if !ok {
		return "", apperror.Validation("Unknown package name")
	}

	res := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Update("badge", badge)
	if res.Error != nil {
		return "", wrapStore(res.Error, "update badge for %s", email)
	}
	if res.RowsAffected == 0 {
		return "", apperror.NotFound("User not found.")
	}

	subject, body := utils.BadgeEmail(badge)
	notify(ctx, s.mailer, email, subject, body)
	return badge, nil
}
