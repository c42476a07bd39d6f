package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const MaxItemNameLength = 255

type (
	ItemID int64

	Item struct {
		ID          ItemID    `json:"id"`
		Name        string    `json:"name"`
		Description *string   `json:"description"`
		CreatedAt   time.Time `json:"createdAt"`
		UpdatedAt   time.Time `json:"updatedAt"`
	}

	// ItemFields are the client supplied attributes of an item.
	ItemFields struct {
		Name        string
		Description *string
	}

	ItemList struct {
		Items []*Item `json:"items"`
		Count int     `json:"count"`
	}
)

// ParseItemID accepts positive decimal identifiers only.
func ParseItemID(raw string) (ItemID, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidItemID, raw)
	}

	return ItemID(id), nil
}

func (id ItemID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// NewItemFields trims and validates the supplied attributes. An empty
// description is treated as absent.
func NewItemFields(name string, description *string) (ItemFields, error) {
	fields := ItemFields{Name: strings.TrimSpace(name)}

	validationErrors := &ValidationErrors{}

	switch {
	case fields.Name == "":
		validationErrors.Add("name", "Item name is required", ValidationCodeRequired)
	case utf8.RuneCountInString(fields.Name) > MaxItemNameLength:
		validationErrors.Add("name", fmt.Sprintf("Item name must be less than %d characters", MaxItemNameLength), ValidationCodeTooLong)
	}

	if validationErrors.HasErrors() {
		return ItemFields{}, validationErrors
	}

	if description != nil && *description != "" {
		value := *description
		fields.Description = &value
	}

	return fields, nil
}

func NewItemList(items []*Item) *ItemList {
	if items == nil {
		items = []*Item{}
	}

	return &ItemList{Items: items, Count: len(items)}
}
