package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// productQuantities collects repeated -product id[:quantity] flags.
type productQuantities map[int]int

func (p productQuantities) String() string {
	ids := make([]int, 0, len(p))
	for id := range p {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%d:%d", id, p[id]))
	}
	return strings.Join(parts, ",")
}

func (p productQuantities) Set(value string) error {
	idPart, qtyPart, hasQty := strings.Cut(strings.TrimSpace(value), ":")

	id, err := strconv.Atoi(strings.TrimSpace(idPart))
	if err != nil {
		return fmt.Errorf("invalid product id %q", idPart)
	}

	qty := 1
	if hasQty {
		qty, err = strconv.Atoi(strings.TrimSpace(qtyPart))
		if err != nil || qty < 1 {
			return fmt.Errorf("invalid quantity %q for product %d", qtyPart, id)
		}
	}

	p[id] += qty
	return nil
}
