package model

import (
	"fmt"

	"go-pmptt/pkg/section"
)

// Item is a single node of a hierarchy.
type Item struct {
	HierarchyCode    string `json:"hierarchyCode" cbor:"1,keyasint"`
	Code             string `json:"code" cbor:"2,keyasint"`
	Level            int    `json:"level" cbor:"3,keyasint"`
	LeftBound        int64  `json:"leftBound" cbor:"4,keyasint"`
	RightBound       int64  `json:"rightBound" cbor:"5,keyasint"`
	NumberOfChildren int    `json:"numberOfChildren" cbor:"6,keyasint"`
	Order            int    `json:"order" cbor:"7,keyasint"`
	Bucket           int    `json:"bucket" cbor:"8,keyasint"`
}

func (i Item) Section() section.Section {
	return section.Section{LeftBound: i.LeftBound, RightBound: i.RightBound}
}

func (i Item) WithBucket() section.WithBucket {
	return section.WithBucket{Section: i.Section(), Bucket: i.Bucket}
}

// SetSection places the item into s on the level.
func (i *Item) SetSection(s section.WithBucket, level int) {
	i.LeftBound = s.LeftBound
	i.RightBound = s.RightBound
	i.Bucket = s.Bucket
	i.Level = level
}

// Encloses reports whether o lies in the subtree of i, i itself excluded.
func (i Item) Encloses(o Item) bool {
	return o.Level > i.Level && i.Section().Encloses(o.Section())
}

func (i Item) String() string {
	return fmt.Sprintf(
		"%s[level=%d bounds=%d-%d order=%d bucket=%d children=%d]",
		i.Code, i.Level, i.LeftBound, i.RightBound, i.Order, i.Bucket, i.NumberOfChildren,
	)
}

// TrackedItem pairs the current state of an item with the state it had when
// it was loaded or created. Listeners receive both on update.
type TrackedItem struct {
	Item
	original Item
}

func NewTrackedItem(item Item) *TrackedItem {
	return &TrackedItem{Item: item, original: item}
}

func (t *TrackedItem) Original() Item {
	return t.original
}

func (t *TrackedItem) Changed() bool {
	return t.Item != t.original
}
