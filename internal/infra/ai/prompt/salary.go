package prompt

import (
	"fmt"

	"github.com/bryanwahyu/teampulse-turbo/internal/domain/salary"
)

// EmployeeSystem directs a single-employee compensation review.
func EmployeeSystem() string {
	return `You are an HR salary efficiency analyst. Analyze the profile of a single employee.
Give market comparisons for Ukraine, a salary fairness assessment and the risk of losing the person.
Your output must be exactly one valid JSON object following the schema below (no markdown, no commentary).

Current Ukrainian market data (UAH per month):
- IT: Junior 25-45k, Middle 45-80k, Senior 80-150k+
- Marketing: 20-60k depending on level
- Sales: base plus bonuses, 25-100k+
- HR: 25-70k
- Design: 25-80k
- Product: 60-120k+

Location: Kyiv +20%, other large cities +10%, regions base rate, remote -5 to -10%.

Schema:
{
  "employee_analysis": {
    "salary_fairness": 7,
    "market_position": "<below_market|at_market|above_market|significantly_above>",
    "performance_ratio": 8,
    "growth_potential": "<low|medium|high>",
    "retention_priority": "<low|medium|high|critical>"
  },
  "market_data": {
    "position_range_min": 45000,
    "position_range_max": 80000,
    "market_median": 60000,
    "location_adjustment": 1.2,
    "experience_multiplier": 1.15,
    "skills_premium": 0.1
  },
  "risk_assessment": {
    "flight_probability": 3,
    "retention_risk": "<low|medium|high>",
    "market_demand": "<low|medium|high|very_high>",
    "replacement_difficulty": "<easy|moderate|hard|very_hard>",
    "knowledge_criticality": "<low|medium|high>"
  },
  "recommendations": {
    "salary_adjustment": "<string>",
    "career_development": "<string>",
    "skills_improvement": "<string>",
    "retention_strategy": "<string>"
  },
  "action_plan": ["<concrete step>"],
  "benchmark_companies": ["<string>"],
  "confidence": 0.88
}`
}

// EmployeeUser embeds the employee form as indented JSON.
func EmployeeUser(e salary.Employee) string {
	return fmt.Sprintf(`Employee profile:
%s

Analyze according to the system instructions and return valid JSON.
Focus on Ukrainian market data and local specifics.`, indent(e))
}

// TeamTextSystem directs the analysis of a free-text team description.
func TeamTextSystem() string {
	return `You are a team compensation analyst. Analyze free-text descriptions of teams.
Identify structure, roles, salaries and inefficiencies, then give recommendations.
Your output must be exactly one valid JSON object following the schema below (no markdown, no commentary).
overall_efficiency and cost_effectiveness are scores from 0 to 10.

Apply current Ukrainian market data: account for inflation and the economic situation,
compare with European standards and keep pay competitive enough to retain talent.

Schema:
{
  "overall_efficiency": 7,
  "market_alignment": "<below_market|at_market|above_market>",
  "cost_effectiveness": 8,
  "team_structure": {
    "roles_identified": ["<role>"],
    "salary_ranges": {"<role>": {"min": 0, "max": 0}},
    "team_size": 0,
    "seniority_distribution": {"junior": 0, "middle": 0, "senior": 0}
  },
  "strengths": ["<string>"],
  "concerns": ["<string>"],
  "inefficiencies": [
    {"issue": "<string>", "impact": "<high|medium|low>", "annual_cost": 0, "solution": "<string>"}
  ],
  "recommendations": ["<string>"],
  "salary_ranges": {
    "current_average": 55000,
    "recommended_min": 45000,
    "recommended_max": 75000,
    "market_adjustment_needed": true
  },
  "budget_optimization": "<string>",
  "retention_risks": [
    {"role": "<string>", "risk_level": "<high|medium|low>", "mitigation": "<string>"}
  ],
  "hiring_recommendations": [
    {"role": "<string>", "priority": "<high|medium|low>", "budget_range": "<string>", "rationale": "<string>"}
  ],
  "market_trends": ["<string>"],
  "competitive_analysis": "<string>",
  "confidence": 0.85
}`
}

func TeamTextUser(text string) string {
	return fmt.Sprintf(`Team description:
%s

Analyze team structure, salaries and efficiency.
Base your recommendations on the current Ukrainian labour market.
Return valid JSON with no extra commentary.`, text)
}

// SalarySystem directs the analysis of a structured team payload.
func SalarySystem() string {
	return `You are a compensation efficiency analyst. Analyze the JSON structure of a team.
Find overpriced and underpriced tasks, the inefficiency percentage, annual losses and optimizations.
Your output must be exactly one valid JSON object following the schema below (no markdown, no commentary).
inefficiency_percent values are between 0 and 100.

Ukrainian market reference:
- Junior: 15-25 $/hour, Middle: 25-40 $/hour, Senior: 40-70+ $/hour
- Exchange rate: about 37 UAH per $
- Local multipliers: Kyiv 1.2x, regions 0.8-0.9x

Schema:
{
  "per_employee": [
    {
      "name": "<string>",
      "role": "<string>",
      "hourly_rate": 35,
      "market_rate_comparison": "<below|at|above>",
      "tasks": [
        {"task": "<string>", "estimated_hours_per_month": 20, "skill_level_required": "<low|medium|high>", "is_overpriced": false, "is_underpriced": true, "reason": "<string>", "market_rate_for_task": 25, "reassign_to": "<role or null>", "automation_potential": "<low|medium|high>"}
      ],
      "inefficiency_percent": 15,
      "annual_loss_usd": 5000,
      "optimization_suggestions": ["<string>"],
      "retention_risk": "<low|medium|high>"
    }
  ],
  "team_summary": {
    "total_inefficiency_percent": 12,
    "total_employees": 0,
    "average_salary": 0,
    "total_annual_loss_usd": 25000,
    "top_inefficiencies": ["<string>"],
    "quick_wins": ["<string>"],
    "next_best_actions": ["<string>"]
  },
  "recommendations": ["<string>"],
  "confidence": 0.87
}`
}

// SalaryUser embeds the raw team payload as indented JSON.
func SalaryUser(payload map[string]any) string {
	return fmt.Sprintf(`Input data (JSON team structure):
%s

Analyze team efficiency according to the system instructions.
Take Ukrainian market realities and the current economic situation into account.
Return valid JSON with no extra commentary.`, indent(payload))
}
