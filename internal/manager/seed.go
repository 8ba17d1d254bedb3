package manager

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/qixiang/hukou/internal/model"
)

// SeedSampleData inserts two example households so a fresh database has
// something to show. Intended to run only when the store is empty; it
// does not check for itself.
func (m *Manager) SeedSampleData() error {
	now := time.Now().Truncate(time.Second)

	samples := []model.Household{
		{
			ID:               uuid.New(),
			HeadName:         "张三",
			IDNumber:         "110101199001011234",
			Address:          "北京市朝阳区XXX街道XXX号",
			Phone:            "13800138000",
			Type:             model.HouseholdUrban,
			RegistrationDate: now,
			Members: []model.Member{
				{
					Name:         "张三",
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
					Education:    model.EducationUniversity,
					Occupation:   "教师",
				},
			},
		},
		{
			ID:               uuid.New(),
			HeadName:         "王五",
			IDNumber:         "110101198506061236",
			Address:          "北京市海淀区YYY街道YYY号",
			Phone:            "13900139000",
			Type:             model.HouseholdRural,
			RegistrationDate: now,
			Members: []model.Member{
				{
					Name:         "王五",
					IDNumber:     "110101198506061236",
					Relationship: model.RelationshipHead,
					BirthDate:    time.Date(1985, 6, 6, 0, 0, 0, 0, time.UTC),
					Gender:       model.GenderMale,
					Education:    model.EducationHighSchool,
					Occupation:   "农民",
				},
			},
		},
	}

	for i := range samples {
		if err := m.Add(&samples[i]); err != nil {
			return err
		}
	}

	log.Info().Int("households", len(samples)).Msg("Seeded sample data")
	return nil
}
