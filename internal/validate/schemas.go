package validate

import "regexp"

// Route schemas. Declared once as plain data; the validation middleware
// applies them ahead of the business handlers.

var namePattern = regexp.MustCompile(`^[\p{L}\p{N}\s.,'&()-]+$`)

var txTypes = []string{"income", "expense"}

// Register covers POST /api/auth/register.
var Register = Schema{
	Body: []Field{
		{Name: "email", Kind: KindEmail, Required: true, MaxLen: 254},
		{Name: "password", Kind: KindString, Required: true, MinLen: 6, MaxLen: 128},
		{Name: "name", Kind: KindString, Required: true, MinLen: 1, MaxLen: 100},
	},
}

// Login covers POST /api/auth/login.
var Login = Schema{
	Body: []Field{
		{Name: "email", Kind: KindEmail, Required: true},
		{Name: "password", Kind: KindString, Required: true},
	},
}

// UpdateProfile covers PUT /api/auth/profile. Both fields optional; the
// handler applies only what is present.
var UpdateProfile = Schema{
	Body: []Field{
		{Name: "email", Kind: KindEmail, MaxLen: 254},
		{Name: "name", Kind: KindString, MinLen: 1, MaxLen: 100},
	},
}

// UpdatePassword covers PUT /api/auth/password.
var UpdatePassword = Schema{
	Body: []Field{
		{Name: "currentPassword", Kind: KindString, Required: true},
		{Name: "newPassword", Kind: KindString, Required: true, MinLen: 6, MaxLen: 128},
	},
}

// IDParam covers every /:id route; ids must look like stored document ids.
var IDParam = Schema{
	Params: []Field{
		{Name: "id", Kind: KindObjectID, Required: true},
	},
}

// TransactionCreate covers POST /api/transactions.
var TransactionCreate = Schema{
	Body: []Field{
		{Name: "type", Kind: KindString, Required: true, Enum: txTypes},
		{Name: "amount", Kind: KindNumber, Required: true, Min: F64(0.01), MaxDecimals: 2},
		{Name: "category", Kind: KindObjectID},
		{Name: "description", Kind: KindString, MaxLen: 500},
		{Name: "date", Kind: KindDate, Required: true},
	},
}

// TransactionUpdate covers PUT /api/transactions/:id. Everything optional.
var TransactionUpdate = Schema{
	Body: []Field{
		{Name: "type", Kind: KindString, Enum: txTypes},
		{Name: "amount", Kind: KindNumber, Min: F64(0.01), MaxDecimals: 2},
		{Name: "category", Kind: KindObjectID},
		{Name: "description", Kind: KindString, MaxLen: 500},
		{Name: "date", Kind: KindDate},
	},
	Params: IDParam.Params,
}

// TransactionList covers GET /api/transactions.
var TransactionList = Schema{
	Query: []Field{
		{Name: "type", Kind: KindString, Enum: txTypes},
		{Name: "category", Kind: KindObjectID},
		{Name: "from", Kind: KindDate},
		{Name: "to", Kind: KindDate},
		{Name: "page", Kind: KindInteger, Min: F64(1), Default: 1},
		{Name: "limit", Kind: KindInteger, Min: F64(1), Max: F64(100), Default: 20},
	},
}

// TransactionStats covers GET /api/transactions/stats.
var TransactionStats = Schema{
	Query: []Field{
		{Name: "from", Kind: KindDate},
		{Name: "to", Kind: KindDate},
	},
}

// CategoryCreate covers POST /api/categories.
var CategoryCreate = Schema{
	Body: []Field{
		{Name: "name", Kind: KindString, Required: true, MinLen: 1, MaxLen: 60, Pattern: namePattern},
		{Name: "type", Kind: KindString, Required: true, Enum: txTypes},
	},
}

// CategoryUpdate covers PUT /api/categories/:id.
var CategoryUpdate = Schema{
	Body: []Field{
		{Name: "name", Kind: KindString, MinLen: 1, MaxLen: 60, Pattern: namePattern},
		{Name: "type", Kind: KindString, Enum: txTypes},
	},
	Params: IDParam.Params,
}

// SavingsGoalCreate covers POST /api/savings-goals.
var SavingsGoalCreate = Schema{
	Body: []Field{
		{Name: "name", Kind: KindString, Required: true, MinLen: 1, MaxLen: 100},
		{Name: "targetAmount", Kind: KindNumber, Required: true, Min: F64(0.01), MaxDecimals: 2},
		{Name: "deadline", Kind: KindDate},
	},
}

// SavingsGoalUpdate covers PUT /api/savings-goals/:id.
var SavingsGoalUpdate = Schema{
	Body: []Field{
		{Name: "name", Kind: KindString, MinLen: 1, MaxLen: 100},
		{Name: "targetAmount", Kind: KindNumber, Min: F64(0.01), MaxDecimals: 2},
		{Name: "deadline", Kind: KindDate},
	},
	Params: IDParam.Params,
}

// SavingsGoalProgress covers PATCH /api/savings-goals/:id/progress.
var SavingsGoalProgress = Schema{
	Body: []Field{
		{Name: "amount", Kind: KindNumber, Required: true, Min: F64(0.01), MaxDecimals: 2},
	},
	Params: IDParam.Params,
}

// DocumentImport covers POST /api/documents/import. Data is the base64
// payload of the uploaded receipt or statement.
var DocumentImport = Schema{
	Body: []Field{
		{Name: "filename", Kind: KindString, Required: true, MinLen: 1, MaxLen: 255},
		{Name: "mimeType", Kind: KindString, Required: true, Enum: []string{
			"application/pdf", "image/png", "image/jpeg", "text/plain",
		}},
		{Name: "data", Kind: KindString, Required: true, MinLen: 1, MaxLen: 10 << 20},
	},
}
