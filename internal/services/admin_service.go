package services

import (
	"errors"
	"fmt"

	"lootmarket/internal/domain"
	"lootmarket/internal/repos"
)

var (
	ErrLastAdmin     = errors.New("at least one admin must remain")
	ErrCategoryInUse = errors.New("category still has items")
	ErrSelfChange    = errors.New("admins cannot change or delete their own account")
	ErrInvalidStatus = errors.New("invalid order status")
)

type AdminService struct {
	Items  *repos.ItemRepo
	Cats   *repos.CategoryRepo
	Orders *repos.OrderRepo
	Users  *repos.UserRepo
	Blog   *repos.BlogRepo
	Auth   *AuthService
}

type DashboardStats struct {
	Items         int
	Orders        int
	PendingOrders int
	Users         int
	Posts         int
	ByStatus      map[string]int
}

func (s *AdminService) Dashboard() (DashboardStats, error) {
	var st DashboardStats
	var err error
	if st.Items, err = s.Items.Count(); err != nil {
		return st, err
	}
	if st.Orders, err = s.Orders.Count(); err != nil {
		return st, err
	}
	if st.Users, err = s.Users.Count(); err != nil {
		return st, err
	}
	if st.Posts, err = s.Blog.Count(); err != nil {
		return st, err
	}
	if st.ByStatus, err = s.Orders.CountByStatus(); err != nil {
		return st, err
	}
	st.PendingOrders = st.ByStatus[domain.OrderPending]
	return st, nil
}

// DeleteCategory refuses while items still reference the category.
func (s *AdminService) DeleteCategory(id string) error {
	n, err := s.Cats.ItemCount(id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w (%d items)", ErrCategoryInUse, n)
	}
	return s.Cats.Delete(id)
}

func (s *AdminService) UpdateOrderStatus(id, status string) error {
	if !domain.ValidOrderStatus(status) {
		return ErrInvalidStatus
	}
	return s.Orders.UpdateStatus(id, status)
}

func (s *AdminService) CreateUser(name, email, password, role string) (*domain.User, error) {
	return s.Auth.Register(name, email, password, role)
}

// SetRole changes a user's role. The last admin cannot be demoted, and an admin
// cannot change their own role.
func (s *AdminService) SetRole(actorID, userID, role string) error {
	if actorID == userID {
		return ErrSelfChange
	}
	u, err := s.Users.ByID(userID)
	if err != nil {
		return err
	}
	if u.Role == role {
		return nil
	}
	if u.IsAdmin() {
		if err := s.ensureOtherAdmin(); err != nil {
			return err
		}
	}
	return s.Users.SetRole(userID, role)
}

// DeleteUser removes the account and its sessions; orders are kept.
func (s *AdminService) DeleteUser(actorID, userID string) error {
	if actorID == userID {
		return ErrSelfChange
	}
	u, err := s.Users.ByID(userID)
	if err != nil {
		return err
	}
	if u.IsAdmin() {
		if err := s.ensureOtherAdmin(); err != nil {
			return err
		}
	}
	return s.Users.DeleteUserCascade(userID)
}

func (s *AdminService) ensureOtherAdmin() error {
	n, err := s.Users.CountAdmins()
	if err != nil {
		return err
	}
	if n <= 1 {
		return ErrLastAdmin
	}
	return nil
}
