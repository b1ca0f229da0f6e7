package service

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/gaelxxl34/alsabil-service/internal/domain"
	"github.com/gaelxxl34/alsabil-service/internal/repository"
)

// In-memory stores standing in for the DynamoDB repositories.

type fakeOrderStore struct {
	mu     sync.Mutex
	orders map[string]domain.Order
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{orders: make(map[string]domain.Order)}
}

func (s *fakeOrderStore) Create(_ context.Context, order *domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[order.ID] = *order
	return nil
}

func (s *fakeOrderStore) Update(_ context.Context, order *domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[order.ID] = *order
	return nil
}

func (s *fakeOrderStore) Get(_ context.Context, id string) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	return &order, nil
}

func (s *fakeOrderStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.orders, id)
	return nil
}

func (s *fakeOrderStore) ListBySeller(_ context.Context, sellerID string) ([]domain.Order, error) {
	return s.list(func(o domain.Order) bool { return o.SellerID == sellerID }), nil
}

func (s *fakeOrderStore) ListByCustomer(_ context.Context, customerID string) ([]domain.Order, error) {
	return s.list(func(o domain.Order) bool { return o.CustomerID == customerID }), nil
}

func (s *fakeOrderStore) ListAll(_ context.Context) ([]domain.Order, error) {
	return s.list(func(domain.Order) bool { return true }), nil
}

func (s *fakeOrderStore) list(keep func(domain.Order) bool) []domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Order{}
	for _, o := range s.orders {
		if keep(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]domain.User
}

func newFakeUserStore(seed ...domain.User) *fakeUserStore {
	s := &fakeUserStore{users: make(map[string]domain.User)}
	for _, u := range seed {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeUserStore) Create(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = *user
	return nil
}

func (s *fakeUserStore) Get(_ context.Context, id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &user, nil
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			user := u
			return &user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s *fakeUserStore) ListCustomersOfSeller(_ context.Context, sellerID string) ([]domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.User{}
	for _, u := range s.users {
		if u.Role == domain.RoleCustomer && u.SellerID == sellerID {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeUserStore) ListAll(_ context.Context) ([]domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.User{}
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeUserStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
	return nil
}

type fakeConversationStore struct {
	mu       sync.Mutex
	convs    map[string]domain.Conversation
	messages map[string][]domain.Message
}

func newFakeConversationStore() *fakeConversationStore {
	return &fakeConversationStore{
		convs:    make(map[string]domain.Conversation),
		messages: make(map[string][]domain.Message),
	}
}

func (s *fakeConversationStore) Put(_ context.Context, conv *domain.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.convs[conv.ID] = *conv
	return nil
}

func (s *fakeConversationStore) Get(_ context.Context, id string) (*domain.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.convs[id]
	if !ok {
		return nil, repository.ErrConversationNotFound
	}
	return &conv, nil
}

func (s *fakeConversationStore) ListByParticipant(_ context.Context, userID string) ([]domain.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Conversation{}
	for _, conv := range s.convs {
		if conv.HasParticipant(userID) {
			out = append(out, conv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeConversationStore) AppendMessage(_ context.Context, msg *domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[msg.ConversationID] = append(s.messages[msg.ConversationID], *msg)
	return nil
}

func (s *fakeConversationStore) ListMessages(_ context.Context, conversationID string) ([]domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Message{}, s.messages[conversationID]...), nil
}

// recorder captures relay emissions for assertions.
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) record(eventType string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, eventType)
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.events...)
}
