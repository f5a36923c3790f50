package overtraining

import (
	"fmt"
	"sort"
	"time"

	"github.com/biopeak/analytics/internal/activity"
	"github.com/biopeak/analytics/internal/trainingload"
)

const (
	LevelLow    = "baixo"
	LevelMedium = "medio"
	LevelHigh   = "alto"

	restingHeartRate    = 60
	defaultMaxHeartRate = 220

	// activities below both thresholds are auto-detected noise
	significantDurationSeconds = 300
	significantCalories        = 10
)

// Risk is the outcome of one scoring run. Level and recommendation texts
// are kept in Portuguese, matching what the mobile clients display.
type Risk struct {
	Score          int      `json:"score"`
	Level          string   `json:"level"`
	Factors        []string `json:"factors"`
	Recommendation string   `json:"recommendation"`
}

// Score combines training load, frequency, intensity and volume trend into
// a 0 to 100 overtraining risk, relative to the given reference date.
func Score(activities []activity.Activity, now time.Time) Risk {
	if len(activities) == 0 {
		return Risk{
			Score:          0,
			Level:          LevelLow,
			Factors:        []string{"Dados insuficientes"},
			Recommendation: "Continue registrando suas atividades para análise",
		}
	}

	score := 0
	var factors []string

	windows := trainingload.Aggregate(activities, now)

	// 1. training load vs monthly average
	if windows.AvgMonthlyLoad > 0 {
		loadRatio := windows.CurrentWeekLoad / windows.AvgMonthlyLoad
		if loadRatio > 1.5 {
			score += 35
			factors = append(factors, "Carga de treino muito acima da média mensal")
		} else if loadRatio > 1.2 {
			score += 20
			factors = append(factors, "Carga de treino significativamente aumentada")
		}
	}

	// 2. frequency and recovery
	weekActivities := activitiesInLastWeek(activities, now)
	if len(weekActivities) > 6 {
		score += 15
		factors = append(factors, "Treinos quase diários sem descanso adequado")
	} else if len(weekActivities) > 5 {
		score += 8
		factors = append(factors, "Frequência de treino muito alta")
	}

	consecutiveDays := ConsecutiveTrainingDays(activities)
	if consecutiveDays > 5 {
		score += 10
		factors = append(factors, fmt.Sprintf("%d dias consecutivos sem descanso", consecutiveDays))
	} else if consecutiveDays > 3 {
		score += 5
		factors = append(factors, fmt.Sprintf("%d dias consecutivos de treino", consecutiveDays))
	}

	// 3. share of high intensity sessions in the last week
	if len(weekActivities) > 0 {
		highIntensityCount := 0
		for _, a := range weekActivities {
			if isHighIntensity(a) {
				highIntensityCount++
			}
		}
		intensityRatio := float64(highIntensityCount) / float64(len(weekActivities))
		if intensityRatio > 0.6 {
			score += 20
			factors = append(factors, "Proporção muito alta de treinos intensos")
		} else if intensityRatio > 0.4 {
			score += 10
			factors = append(factors, "Intensidade de treino elevada")
		}
	}

	// 4. week over week volume trend
	if windows.PreviousWeekLoad > 0 {
		volumeIncrease := ((windows.CurrentWeekLoad - windows.PreviousWeekLoad) / windows.PreviousWeekLoad) * 100
		if volumeIncrease > 30 {
			score += 20
			factors = append(factors, fmt.Sprintf("Aumento brusco de %.0f%% no volume semanal", volumeIncrease))
		} else if volumeIncrease > 15 {
			score += 10
			factors = append(factors, fmt.Sprintf("Aumento de %.0f%% no volume de treino", volumeIncrease))
		}
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	var level, recommendation string
	switch {
	case score >= 50:
		level = LevelHigh
		recommendation = "ATENÇÃO: Risco elevado de overtraining. Considere reduzir o volume e intensidade dos treinos. Priorize descanso e recuperação ativa. Consulte seu treinador ou médico se persistirem sinais de fadiga excessiva."
	case score >= 25:
		level = LevelMedium
		recommendation = "Cuidado: Seus treinos estão intensos. Planeje dias de recuperação ativa e considere reduzir a intensidade nos próximos treinos. Monitore sinais de fadiga e qualidade do sono."
	default:
		level = LevelLow
		recommendation = "Seus treinos estão equilibrados. Continue mantendo uma boa relação entre treino e descanso. Sempre escute seu corpo e ajuste conforme necessário."
	}

	if len(factors) == 0 {
		factors = append(factors, "Carga de treino adequada")
	}

	return Risk{
		Score:          score,
		Level:          level,
		Factors:        factors,
		Recommendation: recommendation,
	}
}

// ConsecutiveTrainingDays walks backward from the most recent training day
// and counts how many distinct calendar days follow each other without a
// rest day in between. Negligible activities do not count as training days.
func ConsecutiveTrainingDays(activities []activity.Activity) int {
	daysSet := make(map[string]time.Time)
	for _, a := range activities {
		if a.DurationSeconds < significantDurationSeconds && a.Calories < significantCalories {
			continue
		}
		day := a.StartedAt.Truncate(24 * time.Hour)
		daysSet[day.Format("2006-01-02")] = day
	}
	if len(daysSet) == 0 {
		return 0
	}

	days := make([]time.Time, 0, len(daysSet))
	for _, day := range daysSet {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].After(days[j])
	})

	streak := 1
	for i := 1; i < len(days); i++ {
		if !days[i-1].AddDate(0, 0, -1).Equal(days[i]) {
			break
		}
		streak++
	}

	return streak
}

func isHighIntensity(a activity.Activity) bool {
	maxHR := a.MaxHeartRate
	if maxHR <= 0 {
		maxHR = defaultMaxHeartRate
	}
	if a.AvgHeartRate > 0 && maxHR > restingHeartRate {
		hrReserve := (a.AvgHeartRate - restingHeartRate) / (maxHR - restingHeartRate)
		if hrReserve > 0.75 {
			return true
		}
	}
	if a.DurationSeconds > 0 {
		caloriesPerHour := a.Calories / (float64(a.DurationSeconds) / 3600)
		if caloriesPerHour > 400 {
			return true
		}
	}
	return false
}

func activitiesInLastWeek(activities []activity.Activity, now time.Time) []activity.Activity {
	weekAgo := now.AddDate(0, 0, -7)
	var week []activity.Activity
	for _, a := range activities {
		if a.StartedAt.After(weekAgo) && !a.StartedAt.After(now) {
			week = append(week, a)
		}
	}
	return week
}
