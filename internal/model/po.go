package model

import "time"

// POStatusIssued is the only status a purchase order ever carries here;
// downstream fulfilment states live outside this system.
const POStatusIssued = "issued"

// PurchaseOrder is the terminal artifact of a confirmed item. Created once,
// never mutated or deleted.
type PurchaseOrder struct {
	PONo        string              `json:"po_no"`
	PRNo        string              `json:"pr_no"`
	MaterialNo  string              `json:"material_no"`
	Fabricator  string              `json:"fabricator"`
	OrderAmount int                 `json:"order_amount"`
	OrderDate   time.Time           `json:"order_date"`
	Status      string              `json:"status"`
	Disposition Disposition         `json:"disposition"`
	Outcome     VerificationOutcome `json:"outcome"`
}
