// Package export writes household listings to CSV and text report files.
// It is a pure downstream consumer of a materialized listing and never
// touches the store directly.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/qixiang/hukou/internal/format"
	"github.com/qixiang/hukou/internal/model"
)

const dateLayout = "2006-01-02"

// HouseholdsCSV writes one row per household.
func HouseholdsCSV(households []model.Household, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"户主姓名", "身份证号", "户口类型", "联系电话", "家庭地址", "登记日期", "成员数量"}); err != nil {
		return fmt.Errorf("write export header: %w", err)
	}

	for i := range households {
		h := &households[i]
		record := []string{
			h.HeadName,
			h.IDNumber,
			string(h.Type),
			h.Phone,
			sanitize(h.Address),
			h.RegistrationDate.Format(dateLayout),
			strconv.Itoa(len(h.Members)),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write export row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush export: %w", err)
	}
	return f.Close()
}

// MembersCSV writes one row per member across all households, keyed by
// the head name of the household each member belongs to.
func MembersCSV(households []model.Household, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"户主姓名", "成员姓名", "身份证号", "关系", "性别", "出生日期", "学历", "职业"}); err != nil {
		return fmt.Errorf("write export header: %w", err)
	}

	for i := range households {
		h := &households[i]
		for j := range h.Members {
			m := &h.Members[j]
			record := []string{
				h.HeadName,
				m.Name,
				m.IDNumber,
				string(m.Relationship),
				string(m.Gender),
				m.BirthDate.Format(dateLayout),
				string(m.Education),
				sanitize(m.Occupation),
			}
			if err := w.Write(record); err != nil {
				return fmt.Errorf("write export row: %w", err)
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush export: %w", err)
	}
	return f.Close()
}

// StatisticsReport writes a plain-text summary: totals, urban/rural
// split, average household size and an age distribution over all
// members.
func StatisticsReport(households []model.Household, path string) error {
	total := len(households)
	urban := 0
	totalMembers := 0
	for i := range households {
		if households[i].Type == model.HouseholdUrban {
			urban++
		}
		totalMembers += len(households[i].Members)
	}
	rural := total - urban

	average := 0.0
	if total > 0 {
		average = float64(totalMembers) / float64(total)
	}

	// Buckets: 0-10, 11-20, ..., 51-60, 60+.
	var ageGroups [7]int
	now := time.Now()
	for i := range households {
		for j := range households[i].Members {
			age := format.Age(households[i].Members[j].BirthDate, now)
			idx := age / 10
			if age%10 == 0 && age > 0 {
				idx--
			}
			if idx < 0 {
				idx = 0
			}
			if idx > 6 {
				idx = 6
			}
			ageGroups[idx]++
		}
	}

	var b strings.Builder
	fmt.Fprintln(&b, "户籍管理系统统计报告")
	fmt.Fprintln(&b, "========================")
	fmt.Fprintf(&b, "生成时间: %s\n", now.Format("2006-01-02 15:04:05"))
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "基本统计:")
	fmt.Fprintf(&b, "  总户数: %d\n", total)
	fmt.Fprintf(&b, "  城镇户口: %d\n", urban)
	fmt.Fprintf(&b, "  农村户口: %d\n", rural)
	fmt.Fprintf(&b, "  总人数: %d\n", totalMembers)
	fmt.Fprintf(&b, "  平均每户人数: %.2f\n", average)
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "年龄分布:")
	labels := []string{"0-10岁", "11-20岁", "21-30岁", "31-40岁", "41-50岁", "51-60岁", "60岁以上"}
	for i, label := range labels {
		fmt.Fprintf(&b, "  %s: %d\n", label, ageGroups[i])
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// sanitize swaps ASCII commas for full-width ones so free text stays
// readable in spreadsheet tools that split eagerly.
func sanitize(s string) string {
	return strings.ReplaceAll(s, ",", "，")
}
