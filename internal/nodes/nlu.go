package nodes

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"customer_insight_chatbot/internal/dataset"
	"customer_insight_chatbot/pkg"
)

// Keyword families. Short tokens are word-bounded so that "hi" does not fire
// inside "which", "men" inside "payment" or "age" inside "average".
var (
	greetingPattern     = regexp.MustCompile(`\b(hello|hi|hey|greetings|howdy|good (morning|afternoon|evening))\b`)
	femalePattern       = regexp.MustCompile(`\b(female|females|woman|women)\b`)
	malePattern         = regexp.MustCompile(`\b(male|males|man|men)\b`)
	scopedClusterRegex  = regexp.MustCompile(`cluster\s+(\d+)`)
	helpPattern         = regexp.MustCompile(`\bhelp\b|what can you do|what can i ask`)
	integerPattern      = regexp.MustCompile(`\b(\d+)\b`)
	listClustersPattern = regexp.MustCompile(`\bclusters\b|\b(list|show|available|all|how many)\b|\b(which|what)\s+cluster\b|^\W*cluster\W*$`)
	orderValuePattern   = regexp.MustCompile(`order value|\baov\b`)
	agePattern          = regexp.MustCompile(`\bages?\b|how old`)
)

type matcher func(text string) bool

func containsAny(subs ...string) matcher {
	return func(text string) bool {
		for _, s := range subs {
			if strings.Contains(text, s) {
				return true
			}
		}
		return false
	}
}

func matches(re *regexp.Regexp) matcher {
	return re.MatchString
}

// listingRules are checked in order after the cluster branch
var listingRules = []struct {
	kind  pkg.IntentKind
	match matcher
}{
	{pkg.IntentListProductCategories, func(text string) bool {
		return (strings.Contains(text, "product") && strings.Contains(text, "categor")) ||
			strings.Contains(text, "categories")
	}},
	{pkg.IntentListPaymentMethods, containsAny("payment")},
	{pkg.IntentListDevices, containsAny("devices", "device types")},
	{pkg.IntentListRegions, containsAny("regions")},
	{pkg.IntentListDeliveryOptions, containsAny("delivery")},
	{pkg.IntentListAgeGroups, containsAny("age group")},
}

// followUpRules are checked in order; the first attribute keyword wins
var followUpRules = []struct {
	attribute pkg.Attribute
	match     matcher
}{
	{pkg.AttributeIncome, containsAny("income", "salary")},
	{pkg.AttributeSpending, containsAny("spend")},
	{pkg.AttributeOrderValue, matches(orderValuePattern)},
	{pkg.AttributeOrders, containsAny("order")},
	{pkg.AttributeReview, containsAny("review")},
	{pkg.AttributeDevice, containsAny("device")},
	{pkg.AttributeRegion, containsAny("region")},
	{pkg.AttributeGender, containsAny("gender")},
	{pkg.AttributeAge, matches(agePattern)},
}

// Classify maps an utterance onto exactly one intent. The table supplies the
// valid cluster ids and product category names; it is never modified.
// Classification cannot fail: anything unmatched is IntentUnrecognized.
func Classify(utterance string, table *dataset.Table) pkg.Intent {
	text := strings.ToLower(strings.TrimSpace(utterance))

	if greetingPattern.MatchString(text) {
		return pkg.Intent{Kind: pkg.IntentGreeting}
	}

	if gender, ok := matchGender(text); ok {
		intent := pkg.Intent{Kind: pkg.IntentGenderBreakdown, Gender: gender}
		if m := scopedClusterRegex.FindStringSubmatch(text); m != nil {
			if id, err := strconv.Atoi(m[1]); err == nil && table.HasCluster(id) {
				intent.ClusterID = &id
			}
		}
		return intent
	}

	if helpPattern.MatchString(text) {
		return pkg.Intent{Kind: pkg.IntentHelp}
	}

	if strings.Contains(text, "cluster") {
		if intent, ok := classifyCluster(text, table); ok {
			return intent
		}
	}

	for _, rule := range listingRules {
		if rule.match(text) {
			return pkg.Intent{Kind: rule.kind}
		}
	}

	if category := matchCategory(text, table); category != "" {
		return pkg.Intent{Kind: pkg.IntentProductToCluster, Category: category}
	}

	for _, rule := range followUpRules {
		if rule.match(text) {
			return pkg.Intent{Kind: pkg.IntentFollowUp, Attribute: rule.attribute}
		}
	}

	return pkg.Intent{Kind: pkg.IntentUnrecognized}
}

// matchGender checks the female family first: "male and female customers"
// must resolve to female.
func matchGender(text string) (pkg.Gender, bool) {
	if femalePattern.MatchString(text) {
		return pkg.GenderFemale, true
	}
	if malePattern.MatchString(text) {
		return pkg.GenderMale, true
	}
	return "", false
}

func classifyCluster(text string, table *dataset.Table) (pkg.Intent, bool) {
	if m := integerPattern.FindStringSubmatch(text); m != nil {
		id, err := strconv.Atoi(m[1])
		if err == nil && table.HasCluster(id) {
			return pkg.Intent{Kind: pkg.IntentClusterDetail, ClusterID: &id}, true
		}
		intent := pkg.Intent{Kind: pkg.IntentUnknownCluster}
		if err == nil {
			intent.ClusterID = &id
		}
		return intent, true
	}

	// "show me the cluster that buys Electronics" is a product question
	if listClustersPattern.MatchString(text) && matchCategory(text, table) == "" {
		return pkg.Intent{Kind: pkg.IntentListClusters}, true
	}
	return pkg.Intent{}, false
}

// matchCategory returns the product category named in text. Longer names are
// tried first so "Home Appliances" beats "Home"; ties go alphabetically.
func matchCategory(text string, table *dataset.Table) string {
	categories, err := table.DistinctValues(dataset.ColProductCategory)
	if err != nil {
		return ""
	}
	sort.SliceStable(categories, func(i, j int) bool {
		return len(categories[i]) > len(categories[j])
	})
	for _, c := range categories {
		if strings.Contains(text, strings.ToLower(c)) {
			return c
		}
	}
	return ""
}
