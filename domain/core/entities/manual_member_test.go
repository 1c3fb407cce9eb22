package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"familytree-backend/domain/core/valueobjects"
)

func newTestMember(t *testing.T) *ManualMember {
	t.Helper()

	details, err := valueobjects.NewPersonDetails("Grandma Rose", "1940-03-15", "female")
	require.NoError(t, err)

	member, err := NewManualMember(valueobjects.NewPersonID(), details, valueobjects.RelationshipParent, "maternal side")
	require.NoError(t, err)
	return member
}

func TestNewManualMember(t *testing.T) {
	member := newTestMember(t)

	assert.False(t, member.ID().IsEmpty())
	assert.False(t, member.IsLinked())
	assert.Nil(t, member.LinkedAccountID())
	assert.Equal(t, valueobjects.RelationshipParent, member.RelationToAdder())
	assert.True(t, member.NodeKey().IsManual())

	events := member.GetUncommittedEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "member.added", events[0].GetEventType())

	member.MarkEventsAsCommitted()
	assert.Empty(t, member.GetUncommittedEvents())
}

func TestNewManualMemberValidation(t *testing.T) {
	details, err := valueobjects.NewPersonDetails("Rose", "", "")
	require.NoError(t, err)

	t.Run("requires adder", func(t *testing.T) {
		_, err := NewManualMember(valueobjects.PersonID{}, details, valueobjects.RelationshipParent, "")
		assert.Error(t, err)
	})

	t.Run("requires valid relation", func(t *testing.T) {
		_, err := NewManualMember(valueobjects.NewPersonID(), details, valueobjects.RelationshipType("AUNT"), "")
		assert.Error(t, err)
	})
}

func TestManualMemberLinkTo(t *testing.T) {
	t.Run("first link succeeds", func(t *testing.T) {
		member := newTestMember(t)
		member.MarkEventsAsCommitted()
		accountID := valueobjects.NewPersonID()

		alreadyLinked, err := member.LinkTo(accountID)
		require.NoError(t, err)
		assert.False(t, alreadyLinked)
		assert.True(t, member.IsLinked())
		assert.True(t, member.LinkedAccountID().Equals(accountID))

		events := member.GetUncommittedEvents()
		require.Len(t, events, 1)
		assert.Equal(t, "member.linked", events[0].GetEventType())
	})

	t.Run("relinking to the same account is a no-op", func(t *testing.T) {
		member := newTestMember(t)
		accountID := valueobjects.NewPersonID()

		_, err := member.LinkTo(accountID)
		require.NoError(t, err)
		member.MarkEventsAsCommitted()

		alreadyLinked, err := member.LinkTo(accountID)
		require.NoError(t, err)
		assert.True(t, alreadyLinked)
		assert.Empty(t, member.GetUncommittedEvents(), "idempotent relink must not raise events")
	})

	t.Run("linking to a different account fails", func(t *testing.T) {
		member := newTestMember(t)
		first := valueobjects.NewPersonID()

		_, err := member.LinkTo(first)
		require.NoError(t, err)

		_, err = member.LinkTo(valueobjects.NewPersonID())
		assert.Error(t, err)
		assert.True(t, member.LinkedAccountID().Equals(first), "link must not change")
	})

	t.Run("rejects empty account ID", func(t *testing.T) {
		member := newTestMember(t)
		_, err := member.LinkTo(valueobjects.PersonID{})
		assert.Error(t, err)
	})
}

func TestManualMemberUnlink(t *testing.T) {
	member := newTestMember(t)
	accountID := valueobjects.NewPersonID()

	_, err := member.LinkTo(accountID)
	require.NoError(t, err)
	member.MarkEventsAsCommitted()

	member.Unlink()
	assert.False(t, member.IsLinked())

	events := member.GetUncommittedEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "member.unlinked", events[0].GetEventType())

	// Unlinking an unlinked member does nothing
	member.MarkEventsAsCommitted()
	member.Unlink()
	assert.Empty(t, member.GetUncommittedEvents())
}

func TestManualMemberCanBeLinkedBy(t *testing.T) {
	member := newTestMember(t)
	adder := member.AddedBy()
	account := valueobjects.NewPersonID()
	stranger := valueobjects.NewPersonID()

	assert.True(t, member.CanBeLinkedBy(adder, account), "adder may link anyone")
	assert.True(t, member.CanBeLinkedBy(account, account), "an account may claim itself")
	assert.False(t, member.CanBeLinkedBy(stranger, account))
}

func TestManualMemberNodeKeySurvivesLink(t *testing.T) {
	member := newTestMember(t)
	before := member.NodeKey()

	_, err := member.LinkTo(valueobjects.NewPersonID())
	require.NoError(t, err)

	assert.True(t, before.Equals(member.NodeKey()), "provenance does not change on link")
	assert.True(t, member.NodeKey().IsManual())
}
