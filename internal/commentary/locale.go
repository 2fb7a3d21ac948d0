package commentary

import "strings"

// Audience selects the register the commentary is written in.
type Audience string

const (
	AudiencePatient      Audience = "patient"
	AudienceProfessional Audience = "professional"
	AudienceScientist    Audience = "scientist"
)

var professionalAliases = map[string]bool{
	"doctor": true, "clinician": true, "provider": true, "specialist": true,
	"medical": true, "hospital": true, "physician": true, "professional": true,
}

// NormalizeAudience folds the many client_type spellings callers send into
// one of the three supported audiences. Unknown values read as patient.
func NormalizeAudience(clientType string) Audience {
	ct := strings.ToLower(strings.TrimSpace(clientType))
	switch {
	case ct == "scientist" || ct == "scientists" || ct == "researcher":
		return AudienceScientist
	case professionalAliases[ct]:
		return AudienceProfessional
	default:
		return AudiencePatient
	}
}

// NormalizeLocale maps a language tag onto a supported locale code.
func NormalizeLocale(language string) string {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(language)), "ru") {
		return "ru"
	}
	return "en"
}

type audienceBundle struct {
	HeaderTemplate   string // {risk} placeholder
	ProbabilityLabel string
	DriversTitle     string
	ImpactTerms      map[string]string
	DefaultDriver    string

	// patient layout
	CoreTitle      string
	CoreMessage    map[string]string // {probability} placeholder
	NextStepsTitle string
	NextSteps      map[string][]string
	WarningsTitle  string
	WarningSigns   []string
	SupportTitle   string
	Support        []string

	// professional/scientist layout
	SynopsisTitle   string
	Synopsis        map[string]string
	ActionsTitle    string
	Actions         map[string][]string
	MonitoringTitle string
	Monitoring      map[string][]string

	ReminderTitle    string
	ReminderText     string
	AudienceGuidance string
}

type localeBundle struct {
	RiskLabels     map[string]string
	LanguagePrompt string
	Audiences      map[Audience]*audienceBundle
}

func bundleFor(locale string, audience Audience) (*localeBundle, *audienceBundle) {
	lb, ok := locales[locale]
	if !ok {
		lb = locales["en"]
	}
	ab, ok := lb.Audiences[audience]
	if !ok {
		ab = lb.Audiences[AudiencePatient]
	}
	return lb, ab
}

var locales = map[string]*localeBundle{
	"en": {
		RiskLabels:     map[string]string{"High": "HIGH", "Moderate": "MODERATE", "Low": "LOW"},
		LanguagePrompt: "Respond in English with precise clinical terminology.",
		Audiences: map[Audience]*audienceBundle{
			AudiencePatient: {
				HeaderTemplate:   "PERSONAL REPORT | {risk} RISK",
				ProbabilityLabel: "Screening probability",
				DriversTitle:     "SIGNAL HIGHLIGHTS",
				ImpactTerms: map[string]string{
					"positive": "raises concern",
					"negative": "offers protection",
					"neutral":  "steady influence",
				},
				DefaultDriver: "Additional supportive marker within the normal range",
				CoreTitle:     "CORE MESSAGE",
				CoreMessage: map[string]string{
					"High":     "The AI sees a high chance that something serious could be affecting the pancreas ({probability}). This is not a diagnosis, but it means follow-up testing should happen right away.",
					"Moderate": "The AI sees a moderate chance of pancreatic issues ({probability}). Staying alert and coordinating next steps with your doctor is important.",
					"Low":      "The AI sees a low chance of pancreatic cancer right now ({probability}). That is encouraging, but keep sharing updates with your care team.",
				},
				NextStepsTitle: "NEXT STEPS",
				NextSteps: map[string][]string{
					"High": {
						"Book a specialist visit within 1-2 weeks and share this report.",
						"Expect detailed scans such as CT or MRI and possibly an endoscopic ultrasound.",
						"Ask about blood tests (for example CA 19-9) that can clarify the picture.",
					},
					"Moderate": {
						"Schedule a follow-up appointment in the coming weeks to review results.",
						"Discuss whether imaging or repeat blood work is needed based on symptoms.",
						"Track any digestion changes, weight shifts, or energy loss and report them.",
					},
					"Low": {
						"Share this summary during your next routine appointment.",
						"Continue annual checkups and any imaging your doctor recommends.",
						"Stay alert to new symptoms and contact your doctor if anything changes.",
					},
				},
				WarningsTitle: "ALERT SYMPTOMS",
				WarningSigns: []string{
					"Yellowing of the skin or eyes.",
					"Strong belly or back pain that does not ease.",
					"Very dark urine, pale stools, or sudden unexplained weight loss.",
				},
				SupportTitle: "SUPPORT & RESOURCES",
				Support: []string{
					"Lean on family, friends, or support groups for encouragement.",
					"Call your doctor or emergency services if severe warning signs appear.",
				},
				ReminderTitle:    "CARE REMINDER",
				ReminderText:     "Bring this report to your medical team. They will confirm the diagnosis and guide treatment.",
				AudienceGuidance: "Primary audience: patient or caregiver. Use encouraging, clear language while keeping explanations medically accurate.",
			},
			AudienceProfessional: {
				HeaderTemplate:   "CLINICAL DOSSIER | {risk} RISK",
				ProbabilityLabel: "Risk probability",
				DriversTitle:     "TOP SIGNAL DRIVERS",
				ImpactTerms: map[string]string{
					"positive": "elevates risk",
					"negative": "reduces risk pressure",
					"neutral":  "neutral contribution",
				},
				DefaultDriver: "Additional biomarker within reference range",
				SynopsisTitle: "RESEARCH SYNOPSIS",
				Synopsis: map[string]string{
					"High":     "Attribution clustering mirrors malignant-leaning physiology. Fast-track staging to clarify obstructive, infiltrative, or metastatic pathways, and highlight immediate safety issues (obstruction, infection, hyperglycemia).",
					"Moderate": "Intermediate malignant probability with mixed attributions. Outline near-term diagnostics that would reduce uncertainty most efficiently (contrast CT/MRI, EUS-FNA).",
					"Low":      "Attributions near baseline; low malignant probability. Recommend surveillance cadence and define clinical triggers for earlier reassessment.",
				},
				ActionsTitle: "RECOMMENDED INVESTIGATIONS",
				Actions: map[string][]string{
					"High": {
						"Order contrast-enhanced pancreatic protocol CT or MRI within 7 days.",
						"Arrange endoscopic ultrasound with fine-needle aspiration if imaging remains indeterminate.",
						"Collect tumor markers (CA 19-9, CEA, CA-125) plus metabolic and coagulation panels.",
					},
					"Moderate": {
						"Schedule pancreatic-focused CT or MRI within 2-4 weeks in line with symptom intensity.",
						"Trend tumor markers and metabolic labs; repeat sooner when abnormalities evolve.",
						"Document red-flag symptoms and provide expedited return precautions.",
					},
					"Low": {
						"Maintain annual pancreatic imaging, sooner if clinical status changes.",
						"Update comprehensive metabolic lab panel at routine visits.",
						"Reassess risk if family history, new diabetes, or weight loss emerges.",
					},
				},
				MonitoringTitle: "FOLLOW-UP WINDOWS",
				Monitoring: map[string][]string{
					"High": {
						"Day 0-7: finalize imaging and cytology pathway.",
						"Week 2-4: review multidisciplinary findings and determine surgical versus systemic plan.",
						"Quarterly: reassess biomarkers, glycemic profile, and cachexia indicators.",
					},
					"Moderate": {
						"Month 1: update labs and review the symptom trajectory.",
						"Month 2-3: repeat imaging if biomarkers trend upward or new pain emerges.",
						"Semiannual: formal reassessment with oncology or gastroenterology.",
					},
					"Low": {
						"Every 6-12 months: surveillance labs and imaging per guideline thresholds.",
						"Each visit: screen for pancreatitis flares, diabetes shifts, or weight changes.",
					},
				},
				ReminderTitle:    "SAFE PRACTICE REMINDER",
				ReminderText:     "Clinical decisions remain with the treating physician. Document shared decision-making.",
				AudienceGuidance: "Primary audience: gastroenterology, oncology, and hepatobiliary specialists. Cite guidelines (NCCN v2.2024, ASCO 2023, ESMO 2023) when recommending pathways.",
			},
			AudienceScientist: {
				HeaderTemplate:   "RESEARCH DOSSIER | {risk} RISK",
				ProbabilityLabel: "Model probability",
				DriversTitle:     "MECHANISTIC SIGNAL DRIVERS",
				ImpactTerms: map[string]string{
					"positive": "amplifies oncogenic pressure",
					"negative": "attenuates malignant drive",
					"neutral":  "contextual contribution",
				},
				DefaultDriver: "Additional pathway-neutral biomarker",
				SynopsisTitle: "EVIDENCE SYNTHESIS",
				Synopsis: map[string]string{
					"High":     "Attribution vectors mirror dysregulated stromal-epithelial crosstalk and metabolic reprogramming seen in high-risk pancreatic adenocarcinoma cohorts.",
					"Moderate": "Mixed attribution polarity suggests overlapping inflammatory and preneoplastic mechanisms; biomarker kinetics can reduce diagnostic ambiguity.",
					"Low":      "Signal magnitude approximates background populations from longitudinal registry data.",
				},
				ActionsTitle: "RESEARCH-FOCUSED ACTIONS",
				Actions: map[string][]string{
					"High": {
						"Initiate pancreatic protocol CT/MRI plus diffusion-weighted sequences for microenvironment mapping.",
						"Prioritize EUS-guided tissue acquisition enabling histomics and organoid models.",
						"Screen for germline and somatic DDR alterations (BRCA/PALB2, ATM, CDKN2A).",
					},
					"Moderate": {
						"Schedule high-resolution imaging within 2-4 weeks and compare radiomic features to historical datasets.",
						"Trend CA 19-9, CEA, CRP, and metabolic markers to build individualized risk trajectories.",
					},
					"Low": {
						"Maintain annual imaging with harmonized acquisition parameters to support longitudinal modeling.",
						"Document lifestyle, exposome, and hereditary modifiers for future risk studies.",
					},
				},
				MonitoringTitle: "DATA & FOLLOW-UP WINDOWS",
				Monitoring: map[string][]string{
					"High": {
						"Week 1: finalize imaging and tissue workflow; push multi-omic analyses to bioinformatics cores.",
						"Quarterly: refresh imaging/omics correlations; publish deviations or novel signatures.",
					},
					"Moderate": {
						"Month 1: repeat labs/imaging when biomarker slopes exceed prespecified thresholds.",
						"Quarterly: review registry data contributions and ensure metadata completeness.",
					},
					"Low": {
						"Biannual: capture labs and imaging within standardized research forms for trend analyses.",
					},
				},
				ReminderTitle:    "RESEARCH DISCLAIMER",
				ReminderText:     "This synthesis prioritizes mechanistic interpretation for research planning. Therapeutic decisions remain with the treating clinical team.",
				AudienceGuidance: "Focus on pathophysiology, biomarker performance, and translational implications. Cite pivotal trials and discuss data limitations and bias.",
			},
		},
	},
	"ru": {
		RiskLabels:     map[string]string{"High": "ВЫСОКИЙ", "Moderate": "УМЕРЕННЫЙ", "Low": "НИЗКИЙ"},
		LanguagePrompt: "Отвечай на русском языке, используя точную клиническую терминологию и структурированный стиль.",
		Audiences: map[Audience]*audienceBundle{
			AudiencePatient: {
				HeaderTemplate:   "ЛИЧНЫЙ ОТЧЕТ | {risk} РИСК",
				ProbabilityLabel: "Оценка риска",
				DriversTitle:     "ОСНОВНЫЕ СИГНАЛЫ",
				ImpactTerms: map[string]string{
					"positive": "повышает риск",
					"negative": "снижает риск",
					"neutral":  "нейтральное влияние",
				},
				DefaultDriver: "Дополнительный показатель в пределах нормы",
				CoreTitle:     "ГЛАВНОЕ СООБЩЕНИЕ",
				CoreMessage: map[string]string{
					"High":     "ИИ оценивает высокий риск значимого поражения поджелудочной железы ({probability}). Это не диагноз, но требуется срочно продолжить обследование вместе с врачом.",
					"Moderate": "ИИ видит умеренный риск проблем с поджелудочной железой ({probability}). Важно оставаться начеку и согласовать дальнейшие шаги с лечащим специалистом.",
					"Low":      "ИИ показывает низкий риск рака поджелудочной железы сейчас ({probability}). Это обнадеживает, но продолжайте делиться обновлениями с медкомандой.",
				},
				NextStepsTitle: "СЛЕДУЮЩИЕ ШАГИ",
				NextSteps: map[string][]string{
					"High": {
						"Запишитесь к профильному специалисту в течение 1-2 недель и поделитесь этим отчетом.",
						"Будьте готовы к детальным исследованиям (КТ/МРТ, эндоскопическое УЗИ).",
						"Спросите у врача о необходимых анализах крови, например CA 19-9.",
					},
					"Moderate": {
						"Назначьте повторный прием в ближайшие недели для обсуждения результатов.",
						"Следите за пищеварением, весом и уровнем энергии, фиксируйте изменения.",
					},
					"Low": {
						"Обсудите этот отчет на следующем плановом визите.",
						"Поддерживайте регулярные профилактические обследования по рекомендациям врача.",
					},
				},
				WarningsTitle: "СРОЧНО ОБРАТИТЬСЯ К ВРАЧУ",
				WarningSigns: []string{
					"Пожелтение кожи или глаз.",
					"Сильная боль в животе или спине, которая не проходит.",
					"Очень темная моча, светлый стул или резкая потеря веса.",
				},
				SupportTitle: "ПОДДЕРЖКА И РЕСУРСЫ",
				Support: []string{
					"Опирайтесь на семью, друзей или группы поддержки для эмоциональной помощи.",
					"Немедленно обращайтесь за медицинской помощью при выраженных тревожных признаках.",
				},
				ReminderTitle:    "ВАЖНО",
				ReminderText:     "Покажите этот отчет своей медицинской команде. Только они подтверждают диагноз и выбирают лечение.",
				AudienceGuidance: "Основная аудитория: пациент или его близкие. Используйте поддерживающий тон и понятный язык, сохраняя медицинскую точность.",
			},
			AudienceProfessional: {
				HeaderTemplate:   "КЛИНИЧЕСКОЕ ДОСЬЕ | {risk} РИСК",
				ProbabilityLabel: "Вероятность риска",
				DriversTitle:     "КЛЮЧЕВЫЕ ДРАЙВЕРЫ СИГНАЛА",
				ImpactTerms: map[string]string{
					"positive": "усиливает риск",
					"negative": "снижает риск",
					"neutral":  "нейтральное влияние",
				},
				DefaultDriver: "Дополнительный биомаркер в пределах референтного диапазона",
				SynopsisTitle: "НАУЧНОЕ РЕЗЮМЕ",
				Synopsis: map[string]string{
					"High":     "Кластеризация сигналов отражает физиологию, близкую к злокачественному процессу. Необходимо ускоренное стадирование.",
					"Moderate": "Вероятность злокачественного процесса промежуточная и имеет смешанные атрибуции. Опишите ближайшие тесты, которые быстрее всего снизят неопределенность.",
					"Low":      "Атрибуции близки к базовой линии, риск опухоли низкий. Рекомендуйте ритм наблюдения.",
				},
				ActionsTitle: "РЕКОМЕНДУЕМЫЕ ИССЛЕДОВАНИЯ",
				Actions: map[string][]string{
					"High": {
						"Назначьте контрастное КТ или МРТ поджелудочной железы в течение 7 дней.",
						"Определите CA 19-9, CEA и расширенный биохимический и коагуляционный профиль.",
					},
					"Moderate": {
						"Запланируйте панкреатическое КТ или МРТ в течение 2-4 недель.",
						"Повторяйте онкомаркеры и метаболические анализы при появлении новых отклонений.",
					},
					"Low": {
						"Сохраняйте ежегодную визуализацию поджелудочной железы.",
						"Обновляйте расширенный биохимический профиль на плановых визитах.",
					},
				},
				MonitoringTitle: "ОКНА НАБЛЮДЕНИЯ",
				Monitoring: map[string][]string{
					"High": {
						"День 0-7: завершите визуализацию и цитологический маршрут.",
						"Ежеквартально: пересматривайте биомаркеры, гликемию и признаки кахексии.",
					},
					"Moderate": {
						"Месяц 1: обновите лабораторные показатели и оцените динамику симптомов.",
						"Раз в полгода: формальный пересмотр совместно с онкологом или гастроэнтерологом.",
					},
					"Low": {
						"Каждые 6-12 месяцев: контрольные анализы и визуализация по показаниям.",
					},
				},
				ReminderTitle:    "ПАМЯТКА ПО БЕЗОПАСНОСТИ",
				ReminderText:     "Клинические решения остаются за лечащим врачом. Фиксируйте совместное обсуждение и шаги наблюдения.",
				AudienceGuidance: "Основная аудитория: гастроэнтерологи, онкологи и специалисты по поджелудочной железе. Ссылайтесь на NCCN/ASCO/ESMO.",
			},
			AudienceScientist: {
				HeaderTemplate:   "ИССЛЕДОВАТЕЛЬСКОЕ ДОСЬЕ | {risk} РИСК",
				ProbabilityLabel: "Вероятность по модели",
				DriversTitle:     "МЕХАНИСТИЧЕСКИЕ ДРАЙВЕРЫ СИГНАЛА",
				ImpactTerms: map[string]string{
					"positive": "усиливает онкогенный прессинг",
					"negative": "ослабляет злокачественный драйв",
					"neutral":  "контекстный вклад",
				},
				DefaultDriver: "Дополнительный биомаркер без выраженного путевого эффекта",
				SynopsisTitle: "ОБЗОР ДОКАЗАТЕЛЬСТВ",
				Synopsis: map[string]string{
					"High":     "Векторы атрибуции указывают на нарушенное стромально-эпителиальное взаимодействие и метаболическую перепрограммировку.",
					"Moderate": "Смешанная полярность сигналов предполагает перекрывающиеся воспалительные и преднеопластические механизмы.",
					"Low":      "Модуль сигналов сопоставим с популяционным фоном в продольных регистрах.",
				},
				ActionsTitle: "ИССЛЕДОВАТЕЛЬСКИЕ ДЕЙСТВИЯ",
				Actions: map[string][]string{
					"High": {
						"Назначить КТ/МРТ по специализированному протоколу с диффузионно-взвешенными последовательностями.",
						"Оценить герминальные и соматические нарушения DDR (BRCA/PALB2, ATM, CDKN2A).",
					},
					"Moderate": {
						"Запланировать высокоразрешающую визуализацию в течение 2-4 недель.",
						"Трендировать CA 19-9, CEA, CRP и метаболические маркеры.",
					},
					"Low": {
						"Поддерживать ежегодную визуализацию с гармонизированными протоколами.",
					},
				},
				MonitoringTitle: "ДАННЫЕ И ОКНА НАБЛЮДЕНИЯ",
				Monitoring: map[string][]string{
					"High": {
						"Неделя 1: завершить маршрут визуализации и забора ткани.",
						"Ежеквартально: обновлять связи между визуализацией и омикс-профилями.",
					},
					"Moderate": {
						"Месяц 1: повторить анализы при превышении заданных порогов по наклону маркеров.",
					},
					"Low": {
						"Раз в полгода: обновлять данные в стандартизированных исследовательских формах.",
					},
				},
				ReminderTitle:    "ИССЛЕДОВАТЕЛЬСКОЕ ЗАМЕЧАНИЕ",
				ReminderText:     "Обзор ориентирован на механистическую интерпретацию. Окончательные решения остаются за клинической командой.",
				AudienceGuidance: "Сфокусируйся на патофизиологии, путях сигналинга и трансляционных последствиях. Отметь ограничения данных.",
			},
		},
	},
}
