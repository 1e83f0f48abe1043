package payment

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"
	"time"
)

// ComputeStats aggregates payments by level, status and creation month (newest month first).
func ComputeStats(payments []Payment) Stats {
	st := Stats{
		ByLevel:  []LevelStat{},
		ByStatus: make([]StatusStat, 0, len(Statuses)),
		ByMonth:  []MonthStat{},
	}
	levels := make(map[int]*LevelStat)
	statuses := make(map[Status]int)
	months := make(map[string]*MonthStat)

	for _, p := range payments {
		st.Count++
		st.TotalAmount += p.TotalAmount
		if p.Status == StatusApproved {
			st.ApprovedAmount += p.TotalAmount
		}

		ls, ok := levels[p.Level]
		if !ok {
			ls = &LevelStat{Level: p.Level}
			levels[p.Level] = ls
		}
		ls.Count++
		ls.TotalAmount += p.TotalAmount

		statuses[p.Status]++

		key := p.CreatedAt.UTC().Format("2006-01")
		ms, ok := months[key]
		if !ok {
			ms = &MonthStat{Month: key}
			months[key] = ms
		}
		ms.Count++
		ms.TotalAmount += p.TotalAmount
	}

	for _, ls := range levels {
		st.ByLevel = append(st.ByLevel, *ls)
	}
	sort.Slice(st.ByLevel, func(i, j int) bool { return st.ByLevel[i].Level < st.ByLevel[j].Level })

	for _, s := range Statuses {
		st.ByStatus = append(st.ByStatus, StatusStat{Status: s, Count: statuses[s]})
	}

	for _, ms := range months {
		st.ByMonth = append(st.ByMonth, *ms)
	}
	sort.Slice(st.ByMonth, func(i, j int) bool { return st.ByMonth[i].Month > st.ByMonth[j].Month })
	return st
}

var csvHeader = []string{
	"ID", "Full Name", "Matric Number", "Level", "Email", "Phone", "Total Amount", "Status", "Transaction Ref", "Created At",
}

// WriteCSV writes payments as the admin export sheet.
func WriteCSV(w io.Writer, payments []Payment) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, p := range payments {
		record := []string{
			strconv.Itoa(p.ID),
			p.FullName,
			p.MatricNumber,
			strconv.Itoa(p.Level),
			p.Email,
			p.PhoneNumber,
			strconv.Itoa(p.TotalAmount),
			string(p.Status),
			p.TransactionRef,
			p.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
