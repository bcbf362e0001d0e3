package services

import (
	"fmt"
	"sync"
	"testing"

	"wheel-reward-system/models"
)

func TestCompleteTaskCreditsExactlyOnce(t *testing.T) {
	db := setupTestDB(t)
	balance := NewBalanceService(db)
	svc := NewCreditService(db, balance, DefaultEconomy)
	user := createTestUser(t, db, 100, 0, 0)

	completion, duplicate, err := svc.CompleteTask(user.ID, 1, "txn-abc", 3)
	if err != nil {
		t.Fatalf("first completion: %v", err)
	}
	if duplicate {
		t.Fatal("first completion flagged duplicate")
	}
	if completion == nil || completion.TransactionID != "txn-abc" {
		t.Fatalf("unexpected completion: %+v", completion)
	}

	// Replayed postback: same external key.
	_, duplicate, err = svc.CompleteTask(user.ID, 1, "txn-abc", 3)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if !duplicate {
		t.Fatal("replay not flagged duplicate")
	}

	var after models.User
	if err := db.First(&after, user.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if after.Spins != 3 {
		t.Fatalf("spins = %d, want 3 (credited once)", after.Spins)
	}

	var count int64
	db.Model(&models.TaskCompletion{}).Count(&count)
	if count != 1 {
		t.Fatalf("completions = %d, want 1", count)
	}
}

func TestCompleteTaskConcurrentReplays(t *testing.T) {
	db := setupTestDB(t)
	balance := NewBalanceService(db)
	svc := NewCreditService(db, balance, DefaultEconomy)
	user := createTestUser(t, db, 100, 0, 0)

	const n = 10
	var wg sync.WaitGroup
	credited := make(chan bool, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, duplicate, err := svc.CompleteTask(user.ID, 1, "txn-race", 5)
			if err != nil {
				t.Errorf("concurrent completion: %v", err)
				return
			}
			credited <- !duplicate
		}()
	}
	wg.Wait()
	close(credited)

	wins := 0
	for c := range credited {
		if c {
			wins++
		}
	}
	if wins != 1 {
		t.Fatalf("%d completions credited, want exactly 1", wins)
	}

	var after models.User
	if err := db.First(&after, user.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if after.Spins != 5 {
		t.Fatalf("spins = %d, want 5", after.Spins)
	}
}

func TestReferralQualifiesOnceOnFirstCompletion(t *testing.T) {
	db := setupTestDB(t)
	balance := NewBalanceService(db)
	svc := NewCreditService(db, balance, DefaultEconomy)

	referrer := createTestUser(t, db, 100, 0, 0)
	referred := createTestUser(t, db, 200, 0, 0)
	referral := models.Referral{ReferrerID: referrer.ID, ReferredID: referred.ID}
	if err := db.Create(&referral).Error; err != nil {
		t.Fatalf("create referral: %v", err)
	}

	if _, _, err := svc.CompleteTask(referred.ID, 1, "txn-1", 2); err != nil {
		t.Fatalf("first completion: %v", err)
	}

	var ref models.Referral
	if err := db.First(&ref, referral.ID).Error; err != nil {
		t.Fatalf("reload referral: %v", err)
	}
	if !ref.IsQualified {
		t.Fatal("referral not qualified after first completion")
	}

	var refUser models.User
	if err := db.First(&refUser, referrer.ID).Error; err != nil {
		t.Fatalf("reload referrer: %v", err)
	}
	if refUser.Spins != DefaultEconomy.ReferralBonusSpins {
		t.Fatalf("referrer spins = %d, want %d", refUser.Spins, DefaultEconomy.ReferralBonusSpins)
	}

	// Second, distinct completion must not re-trigger the bonus.
	if _, _, err := svc.CompleteTask(referred.ID, 1, "txn-2", 2); err != nil {
		t.Fatalf("second completion: %v", err)
	}
	if err := db.First(&refUser, referrer.ID).Error; err != nil {
		t.Fatalf("reload referrer: %v", err)
	}
	if refUser.Spins != DefaultEconomy.ReferralBonusSpins {
		t.Fatalf("referrer spins = %d after second completion, bonus paid twice", refUser.Spins)
	}
}

func TestReferralNotTriggeredByDuplicate(t *testing.T) {
	db := setupTestDB(t)
	balance := NewBalanceService(db)
	svc := NewCreditService(db, balance, DefaultEconomy)

	referrer := createTestUser(t, db, 100, 0, 0)
	referred := createTestUser(t, db, 200, 0, 0)
	if err := db.Create(&models.Referral{ReferrerID: referrer.ID, ReferredID: referred.ID}).Error; err != nil {
		t.Fatalf("create referral: %v", err)
	}

	if _, _, err := svc.CompleteTask(referred.ID, 1, "txn-1", 2); err != nil {
		t.Fatalf("completion: %v", err)
	}
	// Manually un-qualify to prove the duplicate path never reaches the
	// cascade: duplicate detection short-circuits first.
	if err := db.Model(&models.Referral{}).Where("referred_id = ?", referred.ID).
		Update("is_qualified", false).Error; err != nil {
		t.Fatalf("reset flag: %v", err)
	}

	if _, duplicate, err := svc.CompleteTask(referred.ID, 1, "txn-1", 2); err != nil || !duplicate {
		t.Fatalf("replay: duplicate=%v err=%v", duplicate, err)
	}

	var ref models.Referral
	if err := db.Where("referred_id = ?", referred.ID).First(&ref).Error; err != nil {
		t.Fatalf("reload referral: %v", err)
	}
	if ref.IsQualified {
		t.Fatal("duplicate completion re-triggered qualification")
	}
}

func TestCompleteTaskWithoutReferral(t *testing.T) {
	db := setupTestDB(t)
	balance := NewBalanceService(db)
	svc := NewCreditService(db, balance, DefaultEconomy)
	user := createTestUser(t, db, 100, 0, 0)

	if _, duplicate, err := svc.CompleteTask(user.ID, 7, "txn-solo", 4); err != nil || duplicate {
		t.Fatalf("completion: duplicate=%v err=%v", duplicate, err)
	}
	var after models.User
	if err := db.First(&after, user.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if after.Spins != 4 {
		t.Fatalf("spins = %d, want 4", after.Spins)
	}
}

func TestPostbackRewardClamping(t *testing.T) {
	svc := NewCreditService(nil, nil, DefaultEconomy)

	cases := []struct {
		payout float64
		want   int64
	}{
		{0, 1},      // floor
		{0.25, 1},   // rounds below floor
		{0.5, 1},    // exactly one spin
		{2.5, 5},    // 1 spin per $0.50
		{49.99, 99}, // truncated, not rounded
		{50, 100},   // exactly the ceiling
		{5000, 100}, // clamped to ceiling
	}
	for _, tc := range cases {
		got, err := svc.PostbackReward(tc.payout)
		if err != nil {
			t.Fatalf("payout %.2f: %v", tc.payout, err)
		}
		if got != tc.want {
			t.Errorf("payout %.2f → %d spins, want %d", tc.payout, got, tc.want)
		}
	}

	if _, err := svc.PostbackReward(-1); err == nil {
		t.Fatal("negative payout accepted")
	}
}

func TestCPAGripTransactionKey(t *testing.T) {
	got := CPAGripTransactionKey("offer42", 987654321)
	want := fmt.Sprintf("cpagrip_%s_%d", "offer42", int64(987654321))
	if got != want {
		t.Fatalf("key = %q, want %q", got, want)
	}
}
