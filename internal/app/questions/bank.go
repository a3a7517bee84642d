// Package questions holds the fixed workplace question pool and the
// category-balanced selector that builds a session's question sequence.
package questions

// Category is a named group of prompts.
type Category struct {
	Name      string
	Questions []string
}

// Bank is the built-in pool: seven categories of seven prompts each.
var Bank = []Category{
	{
		Name: "Work Environment",
		Questions: []string{
			"How do you feel about your physical work environment?",
			"Do you have all the tools you need to do your job effectively?",
			"How would you describe the noise level in your workspace?",
			"Is your workspace comfortable and ergonomically suitable?",
			"Do you feel the office layout promotes collaboration?",
			"How do you feel about the lighting in your workspace?",
			"Do you have enough privacy to focus on your work?",
		},
	},
	{
		Name: "Work-Life Balance",
		Questions: []string{
			"How many hours do you typically work per week?",
			"Do you feel you have enough time for personal activities?",
			"How often do you work on weekends or after hours?",
			"Do you feel comfortable taking time off when needed?",
			"How would you describe your work-life balance?",
			"Do you feel pressured to always be available outside work hours?",
			"How do you manage stress from work?",
		},
	},
	{
		Name: "Management and Leadership",
		Questions: []string{
			"Do you feel your manager listens to your concerns?",
			"How would you describe your relationship with your manager?",
			"Do you receive regular feedback on your performance?",
			"Do you feel management recognizes your contributions?",
			"How transparent is leadership about company decisions?",
			"Do you feel comfortable approaching senior management?",
			"How well does your manager help you grow professionally?",
		},
	},
	{
		Name: "Team Dynamics",
		Questions: []string{
			"How would you describe your relationships with colleagues?",
			"Do you feel your team collaborates effectively?",
			"Do you feel included in team activities and decisions?",
			"How are conflicts resolved within your team?",
			"Do you feel your ideas are valued by team members?",
			"How would you rate the communication within your team?",
			"Do you feel supported by your colleagues?",
		},
	},
	{
		Name: "Career Growth",
		Questions: []string{
			"Do you see a clear career path at this company?",
			"How satisfied are you with professional development opportunities?",
			"Do you feel you're learning and growing in your role?",
			"Are there opportunities for advancement in your department?",
			"How well does the company support your career goals?",
			"Do you feel your skills are being fully utilized?",
			"What skills would you like to develop further?",
		},
	},
	{
		Name: "Compensation and Benefits",
		Questions: []string{
			"Do you feel fairly compensated for your work?",
			"How satisfied are you with the benefits package?",
			"Does your compensation reflect your contributions?",
			"How does your compensation compare to industry standards?",
			"Are there benefits you wish the company offered?",
			"How important is compensation compared to other job aspects?",
			"Do you understand how compensation decisions are made?",
		},
	},
	{
		Name: "Workload and Resources",
		Questions: []string{
			"How would you describe your current workload?",
			"Do you have the resources you need to do your job well?",
			"How often do you feel overwhelmed by your responsibilities?",
			"Are deadlines and expectations realistic in your role?",
			"Do you feel your workload is fairly distributed in your team?",
			"How often do you need to work extra hours to complete tasks?",
			"Do you feel you have enough support with your tasks?",
		},
	},
}

// CategoryOf returns the category a prompt belongs to, if any.
func CategoryOf(bank []Category, question string) (string, bool) {
	for _, c := range bank {
		for _, q := range c.Questions {
			if q == question {
				return c.Name, true
			}
		}
	}
	return "", false
}
