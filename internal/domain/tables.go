package domain

var Tables = []interface{}{
	&Customer{},
	&Product{},
	&Order{},
	&CrmJob{},
}
