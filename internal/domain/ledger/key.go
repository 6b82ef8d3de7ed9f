package ledger

// BalanceKey identifica una fila de saldo: (artículo, ubicación, lote).
// BatchID vacío = stock sin lote.
type BalanceKey struct {
	ItemID     string
	LocationID string
	BatchID    string
}

// Less define el orden total sobre claves de saldo (lexicográfico). Los
// traslados bloquean sus dos claves en este orden, nunca en el orden de
// llegada, para que dos traslados cruzados no se bloqueen mutuamente.
func (k BalanceKey) Less(other BalanceKey) bool {
	if k.ItemID != other.ItemID {
		return k.ItemID < other.ItemID
	}
	if k.LocationID != other.LocationID {
		return k.LocationID < other.LocationID
	}
	return k.BatchID < other.BatchID
}
