package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Dias221467/social-connect/internal/models"
	"github.com/Dias221467/social-connect/internal/repository"
	"github.com/Dias221467/social-connect/internal/repository/repotest"
	"github.com/Dias221467/social-connect/pkg/pagination"
)

type friendFixture struct {
	svc     *FriendService
	users   *repotest.UserStore
	friends *repotest.FriendStore
}

func newFriendFixture() *friendFixture {
	users := repotest.NewUserStore()
	friends := repotest.NewFriendStore()
	return &friendFixture{
		svc:     NewFriendService(friends, users),
		users:   users,
		friends: friends,
	}
}

func (f *friendFixture) user(t *testing.T, name string) primitive.ObjectID {
	t.Helper()
	u, err := f.users.Create(context.Background(), &models.User{
		Name:     name,
		Email:    name + "@example.com",
		Password: "hash",
		AuthType: models.AuthTypeLocal,
	})
	require.NoError(t, err)
	return u.ID
}

func (f *friendFixture) send(t *testing.T, from, to primitive.ObjectID) *models.FriendRequest {
	t.Helper()
	req, _, err := f.svc.SendRequest(context.Background(), from, to.Hex())
	require.NoError(t, err)
	return req
}

func (f *friendFixture) befriend(t *testing.T, a, b primitive.ObjectID) {
	t.Helper()
	req := f.send(t, a, b)
	_, err := f.svc.AcceptRequest(context.Background(), b, req.ID.Hex())
	require.NoError(t, err)
}

func friendFilter(userID primitive.ObjectID) repository.FriendRequestFilter {
	return repository.FriendRequestFilter{UserID: userID}
}

func TestSendRequest_CreatesPending(t *testing.T) {
	f := newFriendFixture()
	a, b := f.user(t, "alice"), f.user(t, "bob")

	req, created, err := f.svc.SendRequest(context.Background(), a, b.Hex())
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.FriendRequestPending, req.Status)
	assert.Equal(t, a, req.SenderID)
	assert.Equal(t, b, req.ReceiverID)
}

func TestSendRequest_Errors(t *testing.T) {
	f := newFriendFixture()
	a := f.user(t, "alice")
	ctx := context.Background()

	_, _, err := f.svc.SendRequest(ctx, a, a.Hex())
	assert.Equal(t, ErrSelfRequest, err)
	assert.Equal(t, KindSelfReference, KindOf(err))

	_, _, err = f.svc.SendRequest(ctx, a, "not-an-id")
	assert.Equal(t, ErrInvalidUserID, err)
	assert.Equal(t, KindInvalidIdentifier, KindOf(err))

	_, _, err = f.svc.SendRequest(ctx, a, primitive.NewObjectID().Hex())
	assert.Equal(t, ErrUserNotFound, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestSendRequest_Conflicts(t *testing.T) {
	f := newFriendFixture()
	a, b := f.user(t, "alice"), f.user(t, "bob")
	ctx := context.Background()

	f.send(t, a, b)

	_, _, err := f.svc.SendRequest(ctx, b, a.Hex())
	assert.Equal(t, ErrRequestAlreadyReceived, err)
	assert.Equal(t, KindConflict, KindOf(err))

	_, _, err = f.svc.SendRequest(ctx, a, b.Hex())
	assert.Equal(t, ErrRequestAlreadySent, err)
}

func TestSendRequest_AlreadyFriends(t *testing.T) {
	f := newFriendFixture()
	a, b := f.user(t, "alice"), f.user(t, "bob")
	ctx := context.Background()

	f.befriend(t, a, b)

	_, _, err := f.svc.SendRequest(ctx, a, b.Hex())
	assert.Equal(t, ErrAlreadyFriends, err)
	_, _, err = f.svc.SendRequest(ctx, b, a.Hex())
	assert.Equal(t, ErrAlreadyFriends, err)
}

func TestSendRequest_ReopensRejectedInPlace(t *testing.T) {
	f := newFriendFixture()
	a, b := f.user(t, "alice"), f.user(t, "bob")
	ctx := context.Background()

	first := f.send(t, a, b)
	_, err := f.svc.RejectRequest(ctx, b, first.ID.Hex())
	require.NoError(t, err)

	req, created, err := f.svc.SendRequest(ctx, b, a.Hex())
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, req.ID)
	assert.Equal(t, b, req.SenderID)
	assert.Equal(t, a, req.ReceiverID)

	status, err := f.svc.FriendshipStatus(ctx, a, b)
	require.NoError(t, err)
	assert.Equal(t, models.RelationshipPending, status)

	n, err := f.friends.Count(ctx, friendFilter(a))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

type racingFriendStore struct {
	*repotest.FriendStore
	mu     sync.Mutex
	misses int
}

// FindByPair hides the record from the first caller, as if a concurrent send
// inserted it after the lookup.
func (s *racingFriendStore) FindByPair(ctx context.Context, a, b primitive.ObjectID) (*models.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.misses == 0 {
		s.misses++
		return nil, nil
	}
	return s.FriendStore.FindByPair(ctx, a, b)
}

func TestSendRequest_LostInsertRaceIsConflict(t *testing.T) {
	users := repotest.NewUserStore()
	friends := repotest.NewFriendStore()
	f := &friendFixture{users: users, friends: friends}
	a, b := f.user(t, "alice"), f.user(t, "bob")
	ctx := context.Background()

	_, err := friends.Create(ctx, &models.FriendRequest{SenderID: b, ReceiverID: a})
	require.NoError(t, err)

	svc := NewFriendService(&racingFriendStore{FriendStore: friends}, users)
	_, _, err = svc.SendRequest(ctx, a, b.Hex())
	assert.Equal(t, ErrRequestAlreadyReceived, err)
}

func TestSendRequest_ConcurrentSendsCreateOneRecord(t *testing.T) {
	f := newFriendFixture()
	a, b := f.user(t, "alice"), f.user(t, "bob")
	ctx := context.Background()

	const senders = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		errs    []error
	)
	for i := 0; i < senders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			from, to := a, b
			if i%2 == 1 {
				from, to = b, a
			}
			_, ok, err := f.svc.SendRequest(ctx, from, to.Hex())
			mu.Lock()
			defer mu.Unlock()
			if ok {
				created++
			}
			if err != nil {
				errs = append(errs, err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Len(t, errs, senders-1)
	for _, err := range errs {
		assert.Equal(t, KindConflict, KindOf(err))
	}

	n, err := f.friends.Count(ctx, friendFilter(a))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestAcceptRequest(t *testing.T) {
	f := newFriendFixture()
	a, b, c := f.user(t, "alice"), f.user(t, "bob"), f.user(t, "carol")
	ctx := context.Background()

	req := f.send(t, a, b)

	_, err := f.svc.AcceptRequest(ctx, a, req.ID.Hex())
	assert.Equal(t, ErrNotReceiverAccept, err)
	assert.Equal(t, KindForbidden, KindOf(err))
	_, err = f.svc.AcceptRequest(ctx, c, req.ID.Hex())
	assert.Equal(t, ErrNotReceiverAccept, err)

	accepted, err := f.svc.AcceptRequest(ctx, b, req.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.FriendRequestAccepted, accepted.Status)

	_, err = f.svc.AcceptRequest(ctx, b, req.ID.Hex())
	assert.Equal(t, ErrRequestAlreadyAccepted, err)

	_, err = f.svc.RejectRequest(ctx, b, req.ID.Hex())
	assert.Equal(t, ErrRequestAlreadyAccepted, err)
}

func TestRejectRequest(t *testing.T) {
	f := newFriendFixture()
	a, b := f.user(t, "alice"), f.user(t, "bob")
	ctx := context.Background()

	req := f.send(t, a, b)

	_, err := f.svc.RejectRequest(ctx, a, req.ID.Hex())
	assert.Equal(t, ErrNotReceiverReject, err)

	rejected, err := f.svc.RejectRequest(ctx, b, req.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.FriendRequestRejected, rejected.Status)

	_, err = f.svc.RejectRequest(ctx, b, req.ID.Hex())
	assert.Equal(t, ErrRequestAlreadyRejected, err)

	_, err = f.svc.AcceptRequest(ctx, b, req.ID.Hex())
	assert.Equal(t, ErrRequestNotPending, err)
}

func TestRespond_BadIdentifiers(t *testing.T) {
	f := newFriendFixture()
	a := f.user(t, "alice")
	ctx := context.Background()

	_, err := f.svc.AcceptRequest(ctx, a, "xyz")
	assert.Equal(t, ErrInvalidRequestID, err)

	_, err = f.svc.RejectRequest(ctx, a, primitive.NewObjectID().Hex())
	assert.Equal(t, ErrRequestNotFound, err)
}

func TestAreFriends_Symmetric(t *testing.T) {
	f := newFriendFixture()
	a, b := f.user(t, "alice"), f.user(t, "bob")
	ctx := context.Background()

	check := func(want bool) {
		t.Helper()
		ab, err := f.svc.AreFriends(ctx, a, b)
		require.NoError(t, err)
		ba, err := f.svc.AreFriends(ctx, b, a)
		require.NoError(t, err)
		assert.Equal(t, want, ab)
		assert.Equal(t, ab, ba)
	}

	check(false)
	req := f.send(t, a, b)
	check(false)
	_, err := f.svc.RejectRequest(ctx, b, req.ID.Hex())
	require.NoError(t, err)
	check(false)
	req = f.send(t, b, a)
	check(false)
	_, err = f.svc.AcceptRequest(ctx, a, req.ID.Hex())
	require.NoError(t, err)
	check(true)
}

func TestMutualFriendCount(t *testing.T) {
	f := newFriendFixture()
	a, b, c, d := f.user(t, "alice"), f.user(t, "bob"), f.user(t, "carol"), f.user(t, "dave")
	ctx := context.Background()

	n, err := f.svc.MutualFriendCount(ctx, a, b)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	f.befriend(t, a, c)
	f.befriend(t, c, b)
	f.send(t, a, d)
	f.send(t, d, b)

	ab, err := f.svc.MutualFriendCount(ctx, a, b)
	require.NoError(t, err)
	ba, err := f.svc.MutualFriendCount(ctx, b, a)
	require.NoError(t, err)
	assert.Equal(t, 1, ab)
	assert.Equal(t, ab, ba)
}

func TestRelationship(t *testing.T) {
	f := newFriendFixture()
	a, b, c := f.user(t, "alice"), f.user(t, "bob"), f.user(t, "carol")
	ctx := context.Background()

	f.befriend(t, a, b)
	f.befriend(t, a, c)
	f.befriend(t, c, b)

	rel, err := f.svc.Relationship(ctx, a, b.Hex())
	require.NoError(t, err)
	assert.Equal(t, &Friendship{
		Status:        models.RelationshipAccepted,
		AreFriends:    true,
		MutualFriends: 1,
	}, rel)

	_, err = f.svc.Relationship(ctx, a, "bad")
	assert.Equal(t, ErrInvalidUserID, err)
}

func TestListFriends_Paginates(t *testing.T) {
	f := newFriendFixture()
	a := f.user(t, "alice")
	others := []primitive.ObjectID{f.user(t, "bob"), f.user(t, "carol"), f.user(t, "dave")}
	for _, o := range others {
		f.befriend(t, a, o)
	}
	f.send(t, a, f.user(t, "erin"))

	friends, meta, err := f.svc.ListFriends(context.Background(), a, pagination.New(1, 2))
	require.NoError(t, err)
	require.Len(t, friends, 2)
	assert.Equal(t, others[0], friends[0].ID)
	assert.Equal(t, others[1], friends[1].ID)
	assert.EqualValues(t, 3, meta.TotalItems)
	assert.Equal(t, 2, meta.TotalPages)
	assert.True(t, meta.HasNextPage)

	friends, meta, err = f.svc.ListFriends(context.Background(), a, pagination.New(2, 2))
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, others[2], friends[0].ID)
	assert.False(t, meta.HasNextPage)
	assert.True(t, meta.HasPrevPage)
}

func TestListIncomingAndOutgoing(t *testing.T) {
	f := newFriendFixture()
	a, b, c := f.user(t, "alice"), f.user(t, "bob"), f.user(t, "carol")
	ctx := context.Background()

	f.send(t, b, a)
	f.send(t, a, c)
	f.befriend(t, c, b)

	incoming, meta, err := f.svc.ListIncoming(ctx, a, pagination.New(1, 10))
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	assert.EqualValues(t, 1, meta.TotalItems)
	require.NotNil(t, incoming[0].Sender)
	assert.Equal(t, "bob", incoming[0].Sender.Name)
	assert.Nil(t, incoming[0].Receiver)

	outgoing, _, err := f.svc.ListOutgoing(ctx, a, pagination.New(1, 10))
	require.NoError(t, err)
	require.Len(t, outgoing, 1)
	require.NotNil(t, outgoing[0].Receiver)
	assert.Equal(t, "carol", outgoing[0].Receiver.Name)
	assert.Nil(t, outgoing[0].Sender)
}

func TestSuggestions_ExcludesRelatedUsers(t *testing.T) {
	f := newFriendFixture()
	a, friend, pending, rejected := f.user(t, "alice"), f.user(t, "bob"), f.user(t, "carol"), f.user(t, "dave")
	stranger := f.user(t, "erin")
	ctx := context.Background()

	f.befriend(t, a, friend)
	f.send(t, pending, a)
	req := f.send(t, a, rejected)
	_, err := f.svc.RejectRequest(ctx, rejected, req.ID.Hex())
	require.NoError(t, err)

	suggestions, err := f.svc.Suggestions(ctx, a)
	require.NoError(t, err)

	ids := make([]primitive.ObjectID, 0, len(suggestions))
	for _, s := range suggestions {
		ids = append(ids, s.ID)
	}
	assert.ElementsMatch(t, []primitive.ObjectID{rejected, stranger}, ids)
}

func TestSuggestions_Bounded(t *testing.T) {
	f := newFriendFixture()
	a := f.user(t, "alice")
	for _, name := range []string{"b", "c", "d", "e", "f", "g", "h"} {
		f.user(t, name)
	}

	suggestions, err := f.svc.Suggestions(context.Background(), a)
	require.NoError(t, err)
	assert.Len(t, suggestions, SuggestionCount)
	for _, s := range suggestions {
		assert.NotEqual(t, a, s.ID)
	}
}
