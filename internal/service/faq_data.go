package service

import "faqbot-go/internal/model"

// DefaultFAQEntries 是内置的 FAQ 种子数据集。
// 一旦写入相似度索引，系统不再持有独立副本，修改后需重新执行 seed。
var DefaultFAQEntries = []model.FAQEntry{
	{
		ID:       "faq-1",
		Question: "How do I create an account?",
		Answer:   "Click \"Sign Up\" in the top right corner, enter your email address and choose a password. You will receive a confirmation email to activate the account.",
	},
	{
		ID:       "faq-2",
		Question: "How do I reset my password?",
		Answer:   "Go to the login page and click \"Forgot password\". Enter the email you registered with and we will send you a reset link valid for 24 hours.",
	},
	{
		ID:       "faq-3",
		Question: "What payment methods do you accept?",
		Answer:   "We accept all major credit cards, PayPal and bank transfer for annual plans. Invoices are available from the billing page.",
	},
	{
		ID:       "faq-4",
		Question: "How do I upgrade or downgrade my plan?",
		Answer:   "Open Settings > Billing and pick the plan you want. Upgrades take effect immediately; downgrades apply at the start of the next billing cycle.",
	},
	{
		ID:       "faq-5",
		Question: "Can I get a refund?",
		Answer:   "Yes, we offer a full refund within 14 days of purchase, no questions asked. Contact support with your order number to start the process.",
	},
	{
		ID:       "faq-6",
		Question: "Where can I find my API key?",
		Answer:   "API keys are managed under Settings > API Access. You can create multiple keys and revoke any of them at any time.",
	},
	{
		ID:       "faq-7",
		Question: "What are the API rate limits?",
		Answer:   "Free plans allow 60 requests per minute, paid plans 600 requests per minute. Responses include X-RateLimit headers so you can track usage.",
	},
	{
		ID:       "faq-8",
		Question: "How long is my data retained?",
		Answer:   "Chat history is kept for 30 days and then deleted automatically. Account data is retained until you delete your account.",
	},
	{
		ID:       "faq-9",
		Question: "How do I contact support?",
		Answer:   "Email support@example.com or use the in-app chat. Our team responds within one business day, usually much faster.",
	},
	{
		ID:       "faq-10",
		Question: "Do you have an uptime guarantee?",
		Answer:   "Paid plans include a 99.9% uptime SLA. Current and historical status is published at status.example.com.",
	},
}
