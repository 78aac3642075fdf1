package mysql

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"extrud-backend/internal/storage"
)

var admin = storage.Account{ID: 1, Role: storage.RoleAdmin}
var operator = storage.Account{ID: 7, Role: storage.RoleTeam}

func TestBuildListQuery_Defaults(t *testing.T) {
	stmt, args := buildListQuery(admin, storage.LogFilter{}, nil, 0)

	assert.Contains(t, stmt, "l.deleted = FALSE")
	assert.NotContains(t, stmt, "l.created_by = ?")
	assert.Contains(t, stmt, "ORDER BY l.log_date DESC, l.start_time DESC")
	assert.Contains(t, stmt, "LIMIT ? OFFSET ?")
	// only the page size and offset
	assert.Equal(t, []any{storage.PageSize, 0}, args)
}

func TestBuildListQuery_OperatorSeesOwnRowsOnly(t *testing.T) {
	stmt, args := buildListQuery(operator, storage.LogFilter{Plant: "P2"}, nil, 0)

	assert.Contains(t, stmt, "l.created_by = ?")
	assert.Contains(t, stmt, "a.plant = ?")
	assert.Equal(t, []any{operator.ID, "P2", storage.PageSize, 0}, args)
}

func TestBuildListQuery_DeletedStates(t *testing.T) {
	tests := []struct {
		name    string
		deleted string
		want    string
		absent  string
	}{
		{"exclude by default", "", "l.deleted = FALSE", "l.deleted = TRUE"},
		{"only", storage.DeletedOnly, "l.deleted = TRUE", "l.deleted = FALSE"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			stmt, _ := buildListQuery(admin, storage.LogFilter{Deleted: tc.deleted}, nil, 0)
			assert.Contains(t, stmt, tc.want)
			assert.NotContains(t, stmt, tc.absent)
		})
	}

	stmt, _ := buildListQuery(admin, storage.LogFilter{Deleted: storage.DeletedBoth}, nil, 0)
	assert.NotContains(t, stmt, "l.deleted =")
}

func TestBuildListQuery_DegenerateRangeCollapses(t *testing.T) {
	stmt, args := buildListQuery(admin, storage.LogFilter{DateFrom: "2025-03-10", DateTo: "2025-03-10"}, nil, 0)

	assert.Contains(t, stmt, "l.log_date = ?")
	assert.NotContains(t, stmt, "l.log_date >= ?")
	assert.NotContains(t, stmt, "l.log_date <= ?")
	assert.Equal(t, []any{"2025-03-10", storage.PageSize, 0}, args)
}

func TestBuildListQuery_DateRange(t *testing.T) {
	stmt, args := buildListQuery(admin, storage.LogFilter{DateFrom: "2025-03-01", DateTo: "2025-03-31"}, nil, 0)

	assert.Contains(t, stmt, "l.log_date >= ?")
	assert.Contains(t, stmt, "l.log_date <= ?")
	assert.Equal(t, []any{"2025-03-01", "2025-03-31", storage.PageSize, 0}, args)
}

func TestBuildListQuery_RemarkSearchIsCaseSensitiveContains(t *testing.T) {
	stmt, args := buildListQuery(admin, storage.LogFilter{RemarkSearch: "scratch"}, nil, 0)

	assert.Contains(t, stmt, "l.remark LIKE BINARY ?")
	assert.Contains(t, args, "%scratch%")
}

func TestBuildListQuery_SortWhitelistAndOrder(t *testing.T) {
	sort := []storage.SortKey{
		{ID: "result", Desc: false},
		{ID: "nope; DROP TABLE extrusion_logs", Desc: true},
		{ID: "ngQuantity", Desc: true},
	}
	stmt, _ := buildListQuery(admin, storage.LogFilter{}, sort, 0)

	assert.Contains(t, stmt, "ORDER BY l.result ASC, l.ng_quantity DESC")
	assert.NotContains(t, stmt, "DROP TABLE")
}

func TestBuildListQuery_Pagination(t *testing.T) {
	_, args := buildListQuery(admin, storage.LogFilter{}, nil, 150)

	assert.Equal(t, storage.PageSize, args[len(args)-2])
	assert.Equal(t, 150, args[len(args)-1])
}

func TestBuildListQuery_FiltersCompose(t *testing.T) {
	filter := storage.LogFilter{
		Date:      "2025-04-01",
		Machine:   "press-3",
		DieCode:   "D-118",
		LotNumber: "L-9",
		Result:    storage.ResultNG,
	}
	stmt, args := buildListQuery(operator, filter, nil, 50)

	for _, clause := range []string{
		"l.log_date = ?", "a.machine = ?", "l.die_code = ?",
		"l.lot_number_code = ?", "l.result = ?", "l.created_by = ?",
	} {
		assert.Contains(t, stmt, clause)
	}
	assert.Equal(t, 1, strings.Count(stmt, "LIMIT ? OFFSET ?"))
	assert.Len(t, args, 8)
}
