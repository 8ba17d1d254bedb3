package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/qixiang/hukou/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleHousehold(headName string, registered time.Time) *model.Household {
	return &model.Household{
		ID:               uuid.New(),
		HeadName:         headName,
		IDNumber:         "110101199001011234",
		Address:          "北京市朝阳区幸福路1号",
		Phone:            "13800138000",
		Type:             model.HouseholdUrban,
		RegistrationDate: registered,
		Members: []model.Member{
			{
				Name:         headName,
				IDNumber:     "110101199001011234",
				Relationship: model.RelationshipHead,
				BirthDate:    time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
				Gender:       model.GenderMale,
				Education:    model.EducationUniversity,
				Occupation:   "工程师",
			},
			{
				Name:         "李四",
				IDNumber:     "110101199205051235",
				Relationship: model.RelationshipSpouse,
				BirthDate:    time.Date(1992, 5, 5, 0, 0, 0, 0, time.UTC),
				Gender:       model.GenderFemale,
				Education:    model.EducationGraduate,
				Occupation:   "教师",
			},
		},
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("first open failed: %v", err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("second open failed: %v", err)
	}
	defer s.Close()

	empty, err := s.IsEmpty()
	if err != nil {
		t.Fatalf("IsEmpty failed: %v", err)
	}
	if !empty {
		t.Fatal("expected fresh store to be empty")
	}
}

func TestInsertAndGetAllRoundTrip(t *testing.T) {
	s := newTestStore(t)

	want := sampleHousehold("张三", time.Date(2023, 4, 1, 10, 30, 0, 0, time.UTC))
	if err := s.InsertHousehold(want); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	got, err := s.GetAllHouseholds()
	if err != nil {
		t.Fatalf("GetAllHouseholds failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 household, got %d", len(got))
	}

	h := got[0]
	if h.ID != want.ID {
		t.Errorf("id = %s, want %s", h.ID, want.ID)
	}
	if h.HeadName != want.HeadName || h.IDNumber != want.IDNumber ||
		h.Address != want.Address || h.Phone != want.Phone || h.Type != want.Type {
		t.Errorf("household fields differ: got %+v", h)
	}
	if !h.RegistrationDate.Equal(want.RegistrationDate) {
		t.Errorf("registration date = %v, want %v", h.RegistrationDate, want.RegistrationDate)
	}
	if len(h.Members) != len(want.Members) {
		t.Fatalf("expected %d members, got %d", len(want.Members), len(h.Members))
	}
	for i, m := range h.Members {
		w := want.Members[i]
		if m.Name != w.Name || m.IDNumber != w.IDNumber || m.Relationship != w.Relationship ||
			!m.BirthDate.Equal(w.BirthDate) || m.Gender != w.Gender ||
			m.Education != w.Education || m.Occupation != w.Occupation {
			t.Errorf("member %d differs: got %+v, want %+v", i, m, w)
		}
	}
}

func TestUpdateReplacesMemberList(t *testing.T) {
	s := newTestStore(t)

	h := sampleHousehold("张三", time.Date(2023, 4, 1, 10, 30, 0, 0, time.UTC))
	if err := s.InsertHousehold(h); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	h.HeadName = "张三丰"
	h.Address = "北京市海淀区学院路2号"
	h.Type = model.HouseholdRural
	h.Members = []model.Member{
		{
			Name:         "张三丰",
			IDNumber:     "110101198001011230",
			Relationship: model.RelationshipHead,
			BirthDate:    time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC),
			Gender:       model.GenderMale,
			Education:    model.EducationHighSchool,
			Occupation:   "个体",
		},
	}
	if err := s.UpdateHousehold(h); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	got, err := s.GetAllHouseholds()
	if err != nil {
		t.Fatalf("GetAllHouseholds failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 household, got %d", len(got))
	}
	if got[0].HeadName != "张三丰" || got[0].Type != model.HouseholdRural {
		t.Errorf("update not reflected: %+v", got[0])
	}
	if len(got[0].Members) != 1 || got[0].Members[0].Name != "张三丰" {
		t.Fatalf("expected member list fully replaced, got %+v", got[0].Members)
	}

	// No residue from the old two-member list.
	stats, err := s.GetStatistics()
	if err != nil {
		t.Fatalf("GetStatistics failed: %v", err)
	}
	if stats.TotalMembers != 1 {
		t.Errorf("expected 1 member row after update, got %d", stats.TotalMembers)
	}
}

func TestUpdateMissingHouseholdIsNoop(t *testing.T) {
	s := newTestStore(t)

	h := sampleHousehold("张三", time.Now())
	if err := s.UpdateHousehold(h); err != nil {
		t.Fatalf("update of missing id should succeed silently, got: %v", err)
	}

	got, err := s.GetAllHouseholds()
	if err != nil {
		t.Fatalf("GetAllHouseholds failed: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no households, got %d", len(got))
	}
}

func TestDeleteCascadesToMembers(t *testing.T) {
	s := newTestStore(t)

	first := sampleHousehold("张三", time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC))
	second := sampleHousehold("王五", time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC))
	second.Members = second.Members[:1]
	if err := s.InsertHousehold(first); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := s.InsertHousehold(second); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	if err := s.DeleteHousehold(first.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	got, err := s.GetAllHouseholds()
	if err != nil {
		t.Fatalf("GetAllHouseholds failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != second.ID {
		t.Fatalf("expected only second household to remain, got %+v", got)
	}

	stats, err := s.GetStatistics()
	if err != nil {
		t.Fatalf("GetStatistics failed: %v", err)
	}
	if stats.TotalMembers != 1 {
		t.Errorf("expected no orphan member rows, total members = %d", stats.TotalMembers)
	}
}

func TestDeleteMissingHouseholdIsNoop(t *testing.T) {
	s := newTestStore(t)
	if err := s.DeleteHousehold(uuid.New()); err != nil {
		t.Fatalf("delete of missing id should succeed, got: %v", err)
	}
}

func TestGetAllOrdersByRegistrationDateDescending(t *testing.T) {
	s := newTestStore(t)

	older := sampleHousehold("older", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	newer := sampleHousehold("newer", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	if err := s.InsertHousehold(older); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := s.InsertHousehold(newer); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	got, err := s.GetAllHouseholds()
	if err != nil {
		t.Fatalf("GetAllHouseholds failed: %v", err)
	}
	if len(got) != 2 || got[0].ID != newer.ID || got[1].ID != older.ID {
		t.Fatalf("expected newest first, got %v then %v", got[0].HeadName, got[1].HeadName)
	}
}

func TestSearchMatchesSubstringsAcrossFields(t *testing.T) {
	s := newTestStore(t)

	zhang := sampleHousehold("张三", time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC))
	wang := sampleHousehold("王五", time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC))
	wang.IDNumber = "440301198506061236"
	wang.Address = "深圳市南山区科技园"
	wang.Phone = "13900139000"
	if err := s.InsertHousehold(zhang); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := s.InsertHousehold(wang); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	cases := []struct {
		query string
		want  []uuid.UUID
	}{
		{"张", []uuid.UUID{zhang.ID}},
		{"440301", []uuid.UUID{wang.ID}},
		{"科技园", []uuid.UUID{wang.ID}},
		{"139001", []uuid.UUID{wang.ID}},
		{"北京", []uuid.UUID{zhang.ID}},
		{"不存在", nil},
	}
	for _, tc := range cases {
		got, err := s.SearchHouseholds(tc.query)
		if err != nil {
			t.Fatalf("search %q failed: %v", tc.query, err)
		}
		if len(got) != len(tc.want) {
			t.Errorf("search %q returned %d results, want %d", tc.query, len(got), len(tc.want))
			continue
		}
		for i := range got {
			if got[i].ID != tc.want[i] {
				t.Errorf("search %q result %d = %s", tc.query, i, got[i].HeadName)
			}
		}
	}
}

func TestSearchIsCaseSensitive(t *testing.T) {
	s := newTestStore(t)

	h := sampleHousehold("Alice", time.Now())
	h.Address = "Baker Street 221B"
	if err := s.InsertHousehold(h); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	got, err := s.SearchHouseholds("Alice")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("exact-case search should match, got %d results", len(got))
	}

	got, err = s.SearchHouseholds("alice")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("wrong-case search should not match, got %d results", len(got))
	}
}

func TestStatisticsCounts(t *testing.T) {
	s := newTestStore(t)

	urban := sampleHousehold("张三", time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC))
	rural := sampleHousehold("王五", time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC))
	rural.Type = model.HouseholdRural
	rural.Members = rural.Members[:1]
	if err := s.InsertHousehold(urban); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := s.InsertHousehold(rural); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	stats, err := s.GetStatistics()
	if err != nil {
		t.Fatalf("GetStatistics failed: %v", err)
	}
	if stats.TotalHouseholds != 2 || stats.UrbanHouseholds != 1 || stats.RuralHouseholds != 1 {
		t.Errorf("household counts wrong: %+v", stats)
	}
	if stats.UrbanHouseholds+stats.RuralHouseholds != stats.TotalHouseholds {
		t.Errorf("urban+rural != total: %+v", stats)
	}
	if stats.TotalMembers != 3 {
		t.Errorf("total members = %d, want 3", stats.TotalMembers)
	}
}

func TestReadsLegacyDateOnlyRegistrationDate(t *testing.T) {
	s := newTestStore(t)

	id := uuid.New()
	_, err := s.conn.Exec(`
		INSERT INTO households (id, head_name, id_number, address, phone, household_type, registration_date)
		VALUES (?, '张三', '110101199001011234', '北京', '13800138000', ?, '2021-06-15')
	`, id.String(), string(model.HouseholdUrban))
	if err != nil {
		t.Fatalf("failed to seed legacy row: %v", err)
	}

	got, err := s.GetAllHouseholds()
	if err != nil {
		t.Fatalf("GetAllHouseholds failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 household, got %d", len(got))
	}
	want := time.Date(2021, 6, 15, 0, 0, 0, 0, time.UTC)
	if !got[0].RegistrationDate.Equal(want) {
		t.Errorf("legacy date = %v, want %v", got[0].RegistrationDate, want)
	}
}

func TestUnrecognizedEnumStringsDecodeToFallbacks(t *testing.T) {
	s := newTestStore(t)

	id := uuid.New()
	_, err := s.conn.Exec(`
		INSERT INTO households (id, head_name, id_number, address, phone, household_type, registration_date)
		VALUES (?, '张三', '110101199001011234', '北京', '', '集体户口', '2021-06-15 08:00:00')
	`, id.String())
	if err != nil {
		t.Fatalf("failed to seed household: %v", err)
	}
	_, err = s.conn.Exec(`
		INSERT INTO members (household_id, name, id_number, relationship, birth_date, gender, education, occupation)
		VALUES (?, '某人', '110101199001011234', '远亲', '1990-01-01', '未知', '博士后', '')
	`, id.String())
	if err != nil {
		t.Fatalf("failed to seed member: %v", err)
	}

	got, err := s.GetAllHouseholds()
	if err != nil {
		t.Fatalf("GetAllHouseholds failed: %v", err)
	}
	if len(got) != 1 || len(got[0].Members) != 1 {
		t.Fatalf("unexpected result shape: %+v", got)
	}

	if got[0].Type != model.HouseholdUrban {
		t.Errorf("household type fallback = %q, want urban", got[0].Type)
	}
	m := got[0].Members[0]
	if m.Relationship != model.RelationshipOther {
		t.Errorf("relationship fallback = %q, want other", m.Relationship)
	}
	if m.Gender != model.GenderMale {
		t.Errorf("gender fallback = %q, want male", m.Gender)
	}
	if m.Education != model.EducationOther {
		t.Errorf("education fallback = %q, want other", m.Education)
	}
}
