package driver

import "testing"

func TestEnsureMultiStatements(t *testing.T) {
	tests := []struct {
		name string
		dsn  string
		want string
	}{
		{
			name: "default dsn gains the parameter",
			dsn:  "root:root@tcp(127.0.0.1:3306)/genesis?parseTime=true",
			want: "root:root@tcp(127.0.0.1:3306)/genesis?parseTime=true&multiStatements=true",
		},
		{
			name: "dsn without params gets a query string",
			dsn:  "root:root@tcp(127.0.0.1:3306)/genesis",
			want: "root:root@tcp(127.0.0.1:3306)/genesis?multiStatements=true",
		},
		{
			name: "already enabled is left alone",
			dsn:  "root:root@tcp(db:3306)/genesis?parseTime=true&multiStatements=true",
			want: "root:root@tcp(db:3306)/genesis?parseTime=true&multiStatements=true",
		},
		{
			name: "explicitly disabled is respected",
			dsn:  "root:root@tcp(db:3306)/genesis?multiStatements=false",
			want: "root:root@tcp(db:3306)/genesis?multiStatements=false",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ensureMultiStatements(tt.dsn); got != tt.want {
				t.Errorf("ensureMultiStatements(%q) = %q, want %q", tt.dsn, got, tt.want)
			}
		})
	}
}
