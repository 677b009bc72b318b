package matching

// SecurityRepository holds the securities known to the engine, keyed by ISIN.
type SecurityRepository struct {
	securities map[string]*Security
}

// NewSecurityRepository creates an empty repository.
func NewSecurityRepository() *SecurityRepository {
	return &SecurityRepository{securities: make(map[string]*Security)}
}

// Add registers a security.
func (r *SecurityRepository) Add(security *Security) {
	r.securities[security.ISIN] = security
}

// FindByISIN returns the security with the given ISIN, or nil.
func (r *SecurityRepository) FindByISIN(isin string) *Security {
	return r.securities[isin]
}

// All returns the registered securities.
func (r *SecurityRepository) All() []*Security {
	result := make([]*Security, 0, len(r.securities))
	for _, s := range r.securities {
		result = append(result, s)
	}
	return result
}

// BrokerRepository holds the brokers known to the engine.
type BrokerRepository struct {
	brokers map[uint64]*Broker
}

// NewBrokerRepository creates an empty repository.
func NewBrokerRepository() *BrokerRepository {
	return &BrokerRepository{brokers: make(map[uint64]*Broker)}
}

// Add registers a broker.
func (r *BrokerRepository) Add(broker *Broker) {
	r.brokers[broker.BrokerID] = broker
}

// FindByID returns the broker with the given id, or nil.
func (r *BrokerRepository) FindByID(id uint64) *Broker {
	return r.brokers[id]
}

// ShareholderRepository holds the shareholders known to the engine.
type ShareholderRepository struct {
	shareholders map[uint64]*Shareholder
}

// NewShareholderRepository creates an empty repository.
func NewShareholderRepository() *ShareholderRepository {
	return &ShareholderRepository{shareholders: make(map[uint64]*Shareholder)}
}

// Add registers a shareholder.
func (r *ShareholderRepository) Add(shareholder *Shareholder) {
	r.shareholders[shareholder.ShareholderID] = shareholder
}

// FindByID returns the shareholder with the given id, or nil.
func (r *ShareholderRepository) FindByID(id uint64) *Shareholder {
	return r.shareholders[id]
}
