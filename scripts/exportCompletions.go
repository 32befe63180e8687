package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"lmsync/config"
	"lmsync/database"
	"lmsync/models"
	"log"
	"os"
)

// Dumps one course's activity-completion records to a CSV file.
//
//	go run scripts/exportCompletions.go -course 42 -out completions.csv
func main() {
	courseID := flag.Uint("course", 0, "LMS course id to export")
	outPath := flag.String("out", "completions.csv", "output CSV path")
	flag.Parse()

	if *courseID == 0 {
		log.Fatal("missing -course flag")
	}

	// Load config and connect to database
	config.LoadConfig()
	database.ConnectDb()

	var completions []models.ActivityCompletion
	if err := database.Database.Db.
		Where("course_id = ?", *courseID).
		Order("student_id asc, activity_id asc").
		Find(&completions).Error; err != nil {
		log.Fatalf("Failed to load completions: %v", err)
	}
	if len(completions) == 0 {
		log.Fatalf("No completion records for course %d. Sync it first.", *courseID)
	}

	file, err := os.Create(*outPath)
	if err != nil {
		log.Fatalf("Failed to create output file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	writer.Write([]string{"course_id", "student_id", "activity_id", "completion_state", "is_completed", "is_passed", "is_failed", "time_completed"})

	for _, c := range completions {
		timeCompleted := ""
		if c.TimeCompleted != nil {
			timeCompleted = c.TimeCompleted.Format("2006-01-02 15:04:05")
		}
		writer.Write([]string{
			fmt.Sprint(c.CourseID),
			fmt.Sprint(c.StudentID),
			fmt.Sprint(c.ActivityID),
			fmt.Sprint(c.CompletionState),
			fmt.Sprint(c.IsCompleted),
			fmt.Sprint(c.IsPassed),
			fmt.Sprint(c.IsFailed),
			timeCompleted,
		})
	}

	log.Printf("Exported %d completion records to %s", len(completions), *outPath)
}
