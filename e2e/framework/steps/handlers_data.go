package steps

import (
	"context"
	"math/rand"
	"strings"

	"github.com/splunk/ui-e2e/e2e/framework/data"
	"github.com/splunk/ui-e2e/e2e/framework/spec"
)

// RegisterDataHandlers registers test data steps.
func RegisterDataHandlers(reg *Registry) {
	reg.Register("data.random_user", handleRandomUser)
	reg.Register("data.random_order", handleRandomOrder)
}

func handleRandomUser(ctx context.Context, w *World, step spec.StepSpec) (map[string]string, error) {
	_ = ctx
	rng := w.Rand
	if seed := getInt(step.With, "seed", 0); seed != 0 {
		rng = rand.New(rand.NewSource(int64(seed)))
	}
	user, err := data.RandomUser(rng)
	if err != nil {
		return nil, err
	}
	key := w.param(step, "save_as", "random")
	w.rememberUser(key, user)
	return map[string]string{"user": key, "email": user.Email}, nil
}

func handleRandomOrder(ctx context.Context, w *World, step spec.StepSpec) (map[string]string, error) {
	_ = ctx
	order := data.RandomOrder(w.Rand, w.intParam(step, "max_items", 3))
	key := w.param(step, "save_as", "random")
	w.Vars["order."+key+".payment"] = string(order.Payment)
	w.Vars["order."+key+".tip"] = itoa(int(order.Tip))
	w.Vars["order."+key+".total"] = order.Total().String()
	names := make([]string, 0, len(order.Items))
	for _, item := range order.Items {
		names = append(names, item.Name)
	}
	w.Vars["order."+key+".drinks"] = strings.Join(names, ",")
	return map[string]string{"order": key, "items": itoa(order.ItemCount()), "total": order.Total().String()}, nil
}
