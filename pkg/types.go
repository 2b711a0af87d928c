package pkg

// Core types shared by the responder, the session layer and the collaborators

// IntentKind identifies which branch of the routing chain handled an utterance
type IntentKind string

const (
	IntentGreeting              IntentKind = "greeting"
	IntentGenderBreakdown       IntentKind = "gender_breakdown"
	IntentHelp                  IntentKind = "help"
	IntentClusterDetail         IntentKind = "cluster_detail"
	IntentUnknownCluster        IntentKind = "unknown_cluster"
	IntentListClusters          IntentKind = "list_clusters"
	IntentListProductCategories IntentKind = "list_product_categories"
	IntentListPaymentMethods    IntentKind = "list_payment_methods"
	IntentListDevices           IntentKind = "list_devices"
	IntentListRegions           IntentKind = "list_regions"
	IntentListDeliveryOptions   IntentKind = "list_delivery_options"
	IntentListAgeGroups         IntentKind = "list_age_groups"
	IntentProductToCluster      IntentKind = "product_to_cluster"
	IntentFollowUp              IntentKind = "follow_up"
	IntentUnrecognized          IntentKind = "unrecognized"
)

// Gender is the gender token family named in an utterance
type Gender string

const (
	GenderFemale Gender = "female"
	GenderMale   Gender = "male"
)

// Attribute is a customer attribute a follow-up question can ask about
type Attribute string

const (
	AttributeIncome     Attribute = "income"
	AttributeSpending   Attribute = "spending"
	AttributeOrderValue Attribute = "order_value"
	AttributeOrders     Attribute = "orders"
	AttributeReview     Attribute = "review"
	AttributeDevice     Attribute = "device"
	AttributeRegion     Attribute = "region"
	AttributeGender     Attribute = "gender"
	AttributeAge        Attribute = "age"
)

// Intent is the classification result for one utterance.
// Only the fields relevant to Kind are set.
type Intent struct {
	Kind      IntentKind `json:"kind"`
	ClusterID *int       `json:"cluster_id,omitempty"`
	Category  string     `json:"category,omitempty"`
	Attribute Attribute  `json:"attribute,omitempty"`
	Gender    Gender     `json:"gender,omitempty"`
}

// ConversationMemory is the referential context of one conversation.
// It is a value: callers own it and thread it through every turn.
type ConversationMemory struct {
	LastCluster *int   `json:"last_cluster,omitempty"`
	LastProduct string `json:"last_product,omitempty"`
}

// ResetMemory returns an empty memory value
func ResetMemory() ConversationMemory {
	return ConversationMemory{}
}

// Cluster returns the last discussed cluster, if any
func (m ConversationMemory) Cluster() (int, bool) {
	if m.LastCluster == nil {
		return 0, false
	}
	return *m.LastCluster, true
}

// WithCluster returns a copy of m with last_cluster set to id
func (m ConversationMemory) WithCluster(id int) ConversationMemory {
	m.LastCluster = &id
	return m
}

// WithProduct returns a copy of m with last_product set to category
func (m ConversationMemory) WithProduct(category string) ConversationMemory {
	m.LastProduct = category
	return m
}

// IsEmpty reports whether nothing has been resolved yet
func (m ConversationMemory) IsEmpty() bool {
	return m.LastCluster == nil && m.LastProduct == ""
}

// ConversationMessage represents a message in conversation history
type ConversationMessage struct {
	Role      string `json:"role"` // user, assistant
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

// Session is everything a collaborator persists for one conversation
type Session struct {
	ConversationID string                `json:"conversation_id"`
	Memory         ConversationMemory    `json:"memory"`
	Messages       []ConversationMessage `json:"messages"`
	CreatedAt      int64                 `json:"created_at"`
	UpdatedAt      int64                 `json:"updated_at"`
}
