package mongostore

import (
	"context"
	"regexp"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/matzehuels/orbitgraph/pkg/errors"
	"github.com/matzehuels/orbitgraph/pkg/network"
)

func TestWindowFilter(t *testing.T) {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		w         network.Window
		wantLower time.Time
	}{
		{"as of", network.AsOf(end), end},
		{"between", network.Between(start, end), start},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := WindowFilter(tt.w)

			st, ok := f["start_time"].(bson.M)
			if !ok || st["$lte"] != tt.w.End {
				t.Errorf("start_time = %v, want $lte %v", f["start_time"], tt.w.End)
			}
			or, ok := f["$or"].(bson.A)
			if !ok || len(or) != 2 {
				t.Fatalf("$or = %v, want two branches", f["$or"])
			}
			if open := or[0].(bson.M); open["end_time"] != nil {
				t.Errorf("open branch = %v, want end_time nil", open)
			}
			bounded := or[1].(bson.M)["end_time"].(bson.M)
			if bounded["$gte"] != tt.wantLower {
				t.Errorf("end_time $gte = %v, want %v", bounded["$gte"], tt.wantLower)
			}
		})
	}
}

func TestWindowFilterMarshals(t *testing.T) {
	if _, err := bson.Marshal(WindowFilter(network.AsOf(time.Now()))); err != nil {
		t.Errorf("bson.Marshal(WindowFilter) = %v", err)
	}
	if _, err := bson.Marshal(bson.M{"pipeline": TimeRangePipeline()}); err != nil {
		t.Errorf("bson.Marshal(TimeRangePipeline) = %v", err)
	}
}

func TestSearchFilter(t *testing.T) {
	f := SearchFilter("a.b+")
	or := f["$or"].(bson.A)
	if len(or) != 2 {
		t.Fatalf("$or has %d branches, want 2", len(or))
	}
	name := or[0].(bson.M)["name"].(bson.M)
	pattern := name["$regex"].(string)
	if pattern != regexp.QuoteMeta("a.b+") {
		t.Errorf("$regex = %q, want quoted literal", pattern)
	}
	if name["$options"] != "i" {
		t.Errorf("$options = %v, want i", name["$options"])
	}
	if !regexp.MustCompile(pattern).MatchString("xa.b+y") || regexp.MustCompile(pattern).MatchString("aXbb") {
		t.Error("quoted pattern should only match the literal text")
	}
}

func TestTimeRangePipeline(t *testing.T) {
	p := TimeRangePipeline()
	if len(p) != 1 || p[0][0].Key != "$group" {
		t.Fatalf("pipeline = %v, want a single $group stage", p)
	}
}

func TestConnectRejectsBadURI(t *testing.T) {
	_, err := Connect(context.Background(), "postgres://localhost", "db")
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Connect error = %v, want %s", err, errors.ErrCodeInvalidConfig)
	}
}
