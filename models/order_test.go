package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		allowed  bool
	}{
		{StatusPending, StatusInProgress, true},
		{StatusPending, StatusCompleted, true},
		{StatusPending, StatusCancelled, true},
		{StatusInProgress, StatusCompleted, true},
		{StatusInProgress, StatusCancelled, true},
		{StatusInProgress, StatusPending, false},
		{StatusCompleted, StatusPending, false},
		{StatusCompleted, StatusInProgress, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusInProgress, false},
		{StatusCancelled, StatusCompleted, false},
		{StatusPending, StatusPending, false},
		{StatusPending, "Shipped", false},
		{"Shipped", StatusCompleted, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.allowed, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestGroupStatus(t *testing.T) {
	item := func(status string) OrderItem { return OrderItem{Status: status} }

	assert.Equal(t, StatusPending, GroupStatus(nil))
	assert.Equal(t, StatusPending, GroupStatus([]OrderItem{item(StatusPending), item(StatusPending)}))
	assert.Equal(t, StatusCompleted, GroupStatus([]OrderItem{item(StatusCompleted), item(StatusCompleted)}))
	assert.Equal(t, StatusCancelled, GroupStatus([]OrderItem{item(StatusCancelled)}))
	assert.Equal(t, StatusInProgress, GroupStatus([]OrderItem{item(StatusInProgress), item(StatusPending)}))
	// Partial completion still shows work in progress
	assert.Equal(t, StatusInProgress, GroupStatus([]OrderItem{item(StatusCompleted), item(StatusPending)}))
	// Cancelled lines are ignored while live lines remain
	assert.Equal(t, StatusCompleted, GroupStatus([]OrderItem{item(StatusCancelled), item(StatusCompleted)}))
	assert.Equal(t, StatusPending, GroupStatus([]OrderItem{item(StatusCancelled), item(StatusPending)}))
}

func TestLabGroupsSplitsByOwningLab(t *testing.T) {
	labA := primitive.NewObjectID()
	labB := primitive.NewObjectID()

	order := Order{
		Items: []OrderItem{
			{Name: "CBC", Price: 300, Quantity: 1, LabID: labA, Status: StatusCompleted},
			{Name: "Lipid Profile", Price: 500, Quantity: 2, LabID: labB, Status: StatusPending},
			{Name: "Thyroid Panel", Price: 450, Quantity: 1, LabID: labA, Status: StatusCompleted},
		},
	}

	groups := order.LabGroups()
	require.Len(t, groups, 2)

	// Labs appear in first-seen order, each with its own badge and subtotal
	assert.Equal(t, labA, groups[0].LabID)
	assert.Equal(t, StatusCompleted, groups[0].Status)
	assert.Equal(t, 750.0, groups[0].Subtotal)
	assert.Len(t, groups[0].Items, 2)

	assert.Equal(t, labB, groups[1].LabID)
	assert.Equal(t, StatusPending, groups[1].Status)
	assert.Equal(t, 1000.0, groups[1].Subtotal)
	assert.Len(t, groups[1].Items, 1)
}

func TestLabGroupsIndependentStatuses(t *testing.T) {
	labA := primitive.NewObjectID()
	labB := primitive.NewObjectID()

	order := Order{
		Items: []OrderItem{
			{LabID: labA, Status: StatusCompleted, Price: 100, Quantity: 1},
			{LabID: labB, Status: StatusCancelled, Price: 200, Quantity: 1},
		},
	}

	groups := order.LabGroups()
	require.Len(t, groups, 2)
	assert.Equal(t, StatusCompleted, groups[0].Status)
	assert.Equal(t, StatusCancelled, groups[1].Status)
}

func TestCartValidate(t *testing.T) {
	valid := CartItem{
		ItemID:   primitive.NewObjectID(),
		Name:     "CBC",
		Price:    300,
		Type:     ItemTypeTest,
		LabID:    primitive.NewObjectID(),
		Quantity: 1,
	}

	assert.ErrorIs(t, Cart{}.Validate(), ErrEmptyCart)
	assert.NoError(t, Cart{Items: []CartItem{valid}}.Validate())

	missingID := valid
	missingID.ItemID = primitive.NilObjectID
	assert.ErrorIs(t, Cart{Items: []CartItem{missingID}}.Validate(), ErrUnresolvedItem)

	badType := valid
	badType.Type = "consultation"
	assert.ErrorIs(t, Cart{Items: []CartItem{badType}}.Validate(), ErrUnresolvedItem)

	missingLab := valid
	missingLab.LabID = primitive.NilObjectID
	assert.ErrorIs(t, Cart{Items: []CartItem{missingLab}}.Validate(), ErrUnresolvedItem)

	zeroQty := valid
	zeroQty.Quantity = 0
	assert.ErrorIs(t, Cart{Items: []CartItem{zeroQty}}.Validate(), ErrUnresolvedItem)
}

func TestCartSubtotal(t *testing.T) {
	cart := Cart{Items: []CartItem{
		{Price: 300, Quantity: 2},
		{Price: 450, Quantity: 1},
	}}
	assert.Equal(t, 1050.0, cart.Subtotal())
	assert.Equal(t, 0.0, Cart{}.Subtotal())
}

func TestDeliveryChargeFor(t *testing.T) {
	assert.Equal(t, HomeDeliveryCharge, DeliveryChargeFor(CollectionHome))
	assert.Equal(t, 0.0, DeliveryChargeFor(CollectionLab))
	assert.Equal(t, 0.0, DeliveryChargeFor(""))
}
