package services_test

import (
	"testing"

	"github.com/commune-social/commune/pkg/internal/database"
	"github.com/commune-social/commune/pkg/internal/models"
	"github.com/commune-social/commune/pkg/internal/services"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listGroupSlugs(t *testing.T, viewer *models.Account) []string {
	t.Helper()

	tx := services.FilterGroupWithViewer(database.C, viewer)
	groups, err := services.ListGroups(tx, viewer, 0, 0)
	require.NoError(t, err)

	return lo.Map(groups, func(item models.Group, index int) string {
		return item.Slug
	})
}

func TestListGroupsVisibility(t *testing.T) {
	setupTest(t)

	ownerPublic := makeAccount(t, "owner-public", models.AccountRoleUser)
	ownerClosed := makeAccount(t, "owner-closed", models.AccountRoleUser)
	ownerHidden := makeAccount(t, "owner-hidden", models.AccountRoleUser)
	stranger := makeAccount(t, "stranger", models.AccountRoleUser)
	pending := makeAccount(t, "pending", models.AccountRoleUser)
	platformAdmin := makeAccount(t, "root", models.AccountRoleAdmin)

	makeGroup(t, ownerPublic, "Public Group", models.GroupTypePublic)
	closed := makeGroup(t, ownerClosed, "Closed Group", models.GroupTypeClosed)
	makeGroup(t, ownerHidden, "Hidden Group", models.GroupTypeHidden)

	_, err := services.JoinGroup(pending, closed.ID)
	require.NoError(t, err)

	// Anonymous viewers only get open groups.
	assert.ElementsMatch(t, []string{"public-group"}, listGroupSlugs(t, nil))

	// Strangers as well; restricted groups do not surface.
	assert.ElementsMatch(t, []string{"public-group"}, listGroupSlugs(t, &stranger))

	// Pending rank does not surface the group either.
	assert.ElementsMatch(t, []string{"public-group"}, listGroupSlugs(t, &pending))

	// Full members see their restricted group.
	assert.ElementsMatch(t,
		[]string{"public-group", "closed-group"},
		listGroupSlugs(t, &ownerClosed))
	assert.ElementsMatch(t,
		[]string{"public-group", "hidden-group"},
		listGroupSlugs(t, &ownerHidden))

	// Platform admins see everything.
	assert.ElementsMatch(t,
		[]string{"public-group", "closed-group", "hidden-group"},
		listGroupSlugs(t, &platformAdmin))
}

func TestListGroupsMyRole(t *testing.T) {
	setupTest(t)

	owner := makeAccount(t, "owner", models.AccountRoleUser)
	member := makeAccount(t, "member", models.AccountRoleUser)
	stranger := makeAccount(t, "stranger", models.AccountRoleUser)

	group := makeGroup(t, owner, "Public Group", models.GroupTypePublic)
	_, err := services.JoinGroup(member, group.ID)
	require.NoError(t, err)

	for viewer, expected := range map[*models.Account]*models.GroupRole{
		&owner:    lo.ToPtr(models.GroupRoleOwner),
		&member:   lo.ToPtr(models.GroupRoleUsual),
		&stranger: nil,
	} {
		tx := services.FilterGroupWithViewer(database.C, viewer)
		groups, err := services.ListGroups(tx, viewer, 0, 0)
		require.NoError(t, err)
		require.Len(t, groups, 1)
		if expected == nil {
			assert.Nil(t, groups[0].MyRole)
		} else {
			require.NotNil(t, groups[0].MyRole)
			assert.Equal(t, *expected, *groups[0].MyRole)
		}
	}
}

func TestListGroupsMembershipFilter(t *testing.T) {
	setupTest(t)

	owner := makeAccount(t, "owner", models.AccountRoleUser)
	member := makeAccount(t, "member", models.AccountRoleUser)

	mine := makeGroup(t, member, "My Group", models.GroupTypePublic)
	makeGroup(t, owner, "Other Group", models.GroupTypePublic)

	tx := services.FilterGroupWithViewer(database.C, &member)
	tx = services.FilterGroupWithMembership(tx, member, true)
	groups, err := services.ListGroups(tx, &member, 0, 0)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, mine.ID, groups[0].ID)

	tx = services.FilterGroupWithViewer(database.C, &member)
	tx = services.FilterGroupWithMembership(tx, member, false)
	groups, err = services.ListGroups(tx, &member, 0, 0)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "other-group", groups[0].Slug)
}

func TestListGroupMembersPublicGroup(t *testing.T) {
	setupTest(t)

	owner := makeAccount(t, "owner", models.AccountRoleUser)
	stranger := makeAccount(t, "stranger", models.AccountRoleUser)
	group := makeGroup(t, owner, "Public Group", models.GroupTypePublic)

	// Unauthenticated listing is rejected even for public groups.
	_, err := services.ListGroupMembers(nil, group.ID)
	assert.ErrorIs(t, err, services.ErrUnauthenticated)

	// Any authenticated account may list a public group's members.
	members, err := services.ListGroupMembers(&stranger, group.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, owner.ID, members[0].AccountID)
	assert.Equal(t, models.GroupRoleOwner, members[0].Role)
}

func TestListGroupMembersClosedGroup(t *testing.T) {
	setupTest(t)

	owner := makeAccount(t, "owner", models.AccountRoleUser)
	pending := makeAccount(t, "pending", models.AccountRoleUser)
	usual := makeAccount(t, "usual", models.AccountRoleUser)
	stranger := makeAccount(t, "stranger", models.AccountRoleUser)
	group := makeGroup(t, owner, "Closed Group", models.GroupTypeClosed)

	_, err := services.JoinGroup(pending, group.ID)
	require.NoError(t, err)
	_, err = services.ChangeMemberRole(owner, group.ID, usual.ID, models.GroupRoleUsual)
	require.NoError(t, err)

	_, err = services.ListGroupMembers(&stranger, group.ID)
	assert.ErrorIs(t, err, services.ErrUnauthorized)

	// Pending rank is not enough.
	_, err = services.ListGroupMembers(&pending, group.ID)
	assert.ErrorIs(t, err, services.ErrUnauthorized)

	// A usual member gets the whole roster, the requester included.
	members, err := services.ListGroupMembers(&usual, group.ID)
	require.NoError(t, err)
	roles := lo.SliceToMap(members, func(item models.GroupMember) (uint, models.GroupRole) {
		return item.AccountID, item.Role
	})
	assert.Equal(t, map[uint]models.GroupRole{
		owner.ID:   models.GroupRoleOwner,
		pending.ID: models.GroupRolePending,
		usual.ID:   models.GroupRoleUsual,
	}, roles)
}

func TestListGroupMembersHiddenGroup(t *testing.T) {
	setupTest(t)

	owner := makeAccount(t, "owner", models.AccountRoleUser)
	pending := makeAccount(t, "pending", models.AccountRoleUser)
	group := makeGroup(t, owner, "Hidden Group", models.GroupTypeHidden)

	_, err := services.ChangeMemberRole(owner, group.ID, pending.ID, models.GroupRolePending)
	require.NoError(t, err)

	_, err = services.ListGroupMembers(&pending, group.ID)
	assert.ErrorIs(t, err, services.ErrUnauthorized)

	members, err := services.ListGroupMembers(&owner, group.ID)
	require.NoError(t, err)
	roles := lo.SliceToMap(members, func(item models.GroupMember) (uint, models.GroupRole) {
		return item.AccountID, item.Role
	})
	assert.Equal(t, map[uint]models.GroupRole{
		owner.ID:   models.GroupRoleOwner,
		pending.ID: models.GroupRolePending,
	}, roles)
}

func TestListGroupMembersMissingGroup(t *testing.T) {
	setupTest(t)

	viewer := makeAccount(t, "viewer", models.AccountRoleUser)

	_, err := services.ListGroupMembers(&viewer, 42)
	assert.ErrorIs(t, err, services.ErrNotFound)
}
