package domain

import "strings"

const (
	CategoryAuthentication = "Authentication"
	CategoryUserManagement = "User Management"
	CategoryShoppingCart   = "Shopping Cart"
	CategoryProducts       = "Products"
	CategoryAPI            = "API"
	CategorySecurity       = "Security"
	CategoryCheckout       = "Checkout"
	CategoryFunctional     = "Functional"
)

type categoryRule struct {
	keywords []string
	category string
}

// categoryRules is checked in order and the first hit wins, so
// "api-cart-security" is a Shopping Cart suite.
var categoryRules = []categoryRule{
	{keywords: []string{"login", "auth"}, category: CategoryAuthentication},
	{keywords: []string{"user"}, category: CategoryUserManagement},
	{keywords: []string{"cart", "basket"}, category: CategoryShoppingCart},
	{keywords: []string{"product"}, category: CategoryProducts},
	{keywords: []string{"api"}, category: CategoryAPI},
	{keywords: []string{"security", "xss", "injection"}, category: CategorySecurity},
	{keywords: []string{"checkout"}, category: CategoryCheckout},
}

// Categorize infers a test category from its file name and test text
func Categorize(fileName, text string) string {
	haystack := strings.ToLower(fileName + " " + text)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(haystack, kw) {
				return rule.category
			}
		}
	}
	return CategoryFunctional
}
